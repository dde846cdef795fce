package models

import (
	"fmt"
	"strings"
)

// Chunk type values stored under the "chunk_type" metadata key. They
// discriminate how the content of a LegalDocument should be interpreted.
const (
	ChunkTypeFullDocument = "full_document"
	ChunkTypeTextChunk    = "text_chunk"
	ChunkTypeArticle      = "article"
	ChunkTypeSection      = "section"
)

// LegalDocument is the atomic unit stored in and returned from the vector
// index. Content holds the text span; Metadata carries the origin file,
// law name, chunk type and the structural ids extracted from the source.
type LegalDocument struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MetaString returns the metadata value for key as a string, or "" when the
// key is absent or not string-like. Numeric values (which come back from the
// vector store as float64 after the JSON round-trip) are formatted.
func (d *LegalDocument) MetaString(key string) string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%d", int64(val))
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// MetaInt returns the metadata value for key as an int, or 0 when absent.
func (d *LegalDocument) MetaInt(key string) int {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return 0
	}
}

// MetaStringList returns the metadata value for key as a list of strings.
// Lists survive the trip through the vector store as a comma-joined string,
// so both representations are accepted.
func (d *LegalDocument) MetaStringList(key string) []string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return strings.Split(val, ",")
	default:
		return nil
	}
}

func (d *LegalDocument) ChunkType() string { return d.MetaString("chunk_type") }
func (d *LegalDocument) Source() string    { return d.MetaString("source") }
func (d *LegalDocument) Filename() string  { return d.MetaString("filename") }
func (d *LegalDocument) LawName() string   { return d.MetaString("law_name") }
func (d *LegalDocument) ArticleID() string { return d.MetaString("article_id") }
func (d *LegalDocument) SectionID() string { return d.MetaString("section_id") }

// ContainsArticles lists the article ids whose headings fall inside this
// text chunk's character range. Only meaningful for text_chunk documents.
func (d *LegalDocument) ContainsArticles() []string { return d.MetaStringList("contains_articles") }

// ContainsSections is the section counterpart of ContainsArticles.
func (d *LegalDocument) ContainsSections() []string { return d.MetaStringList("contains_sections") }
