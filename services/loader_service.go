package services

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github/itish2003/legalrag/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	minChunkLength      = 100

	// Ceiling for the full_document unit, to stay inside downstream
	// context windows.
	maxFullDocumentChars = 10000
)

// LegalDocumentLoader turns the PDFs of a corpus directory into layered
// retrievable units: one capped full-document unit, fixed-size overlapping
// text chunks, and one unit per article and per section found by the
// structure analyzer. Every unit from the same file shares the file-level
// metadata (source, law name, article/section counts).
type LegalDocumentLoader struct {
	directoryPath string
	analyzer      *DocumentStructureAnalyzer
	chunkSize     int
	chunkOverlap  int
}

// NewLegalDocumentLoader creates a loader over the given corpus directory.
func NewLegalDocumentLoader(directoryPath string) *LegalDocumentLoader {
	return &LegalDocumentLoader{
		directoryPath: directoryPath,
		analyzer:      NewDocumentStructureAnalyzer(),
		chunkSize:     defaultChunkSize,
		chunkOverlap:  defaultChunkOverlap,
	}
}

// LoadDocuments processes every PDF in the corpus directory. A file that
// fails to open or parse is logged and skipped; a directory with no PDFs
// yields an empty slice, not an error.
func (l *LegalDocumentLoader) LoadDocuments() []models.LegalDocument {
	var allDocuments []models.LegalDocument

	entries, err := os.ReadDir(l.directoryPath)
	if err != nil {
		log.Printf("LOADER: Directory %s is not readable: %v", l.directoryPath, err)
		return allDocuments
	}

	var pdfFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".pdf" {
			pdfFiles = append(pdfFiles, filepath.Join(l.directoryPath, entry.Name()))
		}
	}

	if len(pdfFiles) == 0 {
		log.Printf("LOADER: No PDF files found in %s", l.directoryPath)
		return allDocuments
	}

	log.Printf("LOADER: Processing %d PDF files...", len(pdfFiles))
	for _, pdfFile := range pdfFiles {
		documents, err := l.ProcessFile(pdfFile)
		if err != nil {
			log.Printf("LOADER WARN: Skipping %s: %v", pdfFile, err)
			continue
		}
		allDocuments = append(allDocuments, documents...)
	}

	log.Printf("LOADER: Processed %d document units from %d files.", len(allDocuments), len(pdfFiles))
	return allDocuments
}

// ProcessFile extracts one PDF and emits its full set of units.
func (l *LegalDocumentLoader) ProcessFile(path string) ([]models.LegalDocument, error) {
	text, pdfMeta, err := ExtractPDF(path)
	if err != nil {
		return nil, err
	}

	fileMeta := map[string]interface{}{}
	for k, v := range pdfMeta {
		fileMeta[k] = v
	}
	fileMeta["source"] = path
	fileMeta["filename"] = filepath.Base(path)

	title, _ := pdfMeta["title"].(string)
	fileMeta["law_name"] = deriveLawName(path, title)

	return l.buildDocuments(text, fileMeta), nil
}

// deriveLawName builds the display name of the legal instrument. The
// filename with separators normalized to spaces wins, unless it has two or
// fewer words and the PDF carries a usable title.
func deriveLawName(path, title string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	name = strings.Join(strings.Fields(name), " ")

	title = strings.TrimSpace(title)
	if len(strings.Fields(name)) <= 2 && title != "" {
		return title
	}
	return name
}

// buildDocuments emits the layered units for one source file. Pure over its
// inputs, which keeps the structuring logic testable without real PDFs.
func (l *LegalDocumentLoader) buildDocuments(text string, fileMeta map[string]interface{}) []models.LegalDocument {
	structure := l.analyzer.AnalyzeDocumentStructure(text)
	fileMeta["article_count"] = structure.ArticleCount
	fileMeta["section_count"] = structure.SectionCount

	var documents []models.LegalDocument

	// 1. Full document, capped.
	fullMeta := copyMeta(fileMeta)
	fullMeta["chunk_type"] = models.ChunkTypeFullDocument
	documents = append(documents, models.LegalDocument{
		Content:  truncateRunes(text, maxFullDocumentChars),
		Metadata: fullMeta,
	})

	// 2. Sliding-window chunks, annotated with the structural ids whose
	// match position falls inside each window. Positions are compared in
	// rune offsets so Arabic text maps to the same coordinate space the
	// chunker slices in.
	runes := []rune(text)
	articlePositions := spanRunePositions(text, structure.Articles)
	sectionPositions := spanRunePositions(text, structure.Sections)

	stride := l.chunkSize - l.chunkOverlap
	chunkID := 0
	for start := 0; start < len(runes); start += stride {
		end := start + l.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if end-start < minChunkLength {
			continue
		}

		chunkMeta := copyMeta(fileMeta)
		chunkMeta["chunk_type"] = models.ChunkTypeTextChunk
		chunkMeta["chunk_id"] = chunkID
		chunkMeta["contains_articles"] = idsInRange(structure.Articles, articlePositions, start, start+l.chunkSize)
		chunkMeta["contains_sections"] = idsInRange(structure.Sections, sectionPositions, start, start+l.chunkSize)

		documents = append(documents, models.LegalDocument{
			Content:  string(runes[start:end]),
			Metadata: chunkMeta,
		})
		chunkID++
	}

	// 3. One unit per article.
	for _, article := range structure.Articles {
		articleMeta := copyMeta(fileMeta)
		articleMeta["chunk_type"] = models.ChunkTypeArticle
		articleMeta["article_id"] = article.ID
		articleMeta["article_title"] = l.analyzer.ExtractArticleTitle(article.Content)
		documents = append(documents, models.LegalDocument{
			Content:  article.Content,
			Metadata: articleMeta,
		})
	}

	// 4. One unit per section.
	for _, section := range structure.Sections {
		sectionMeta := copyMeta(fileMeta)
		sectionMeta["chunk_type"] = models.ChunkTypeSection
		sectionMeta["section_id"] = section.ID
		documents = append(documents, models.LegalDocument{
			Content:  section.Content,
			Metadata: sectionMeta,
		})
	}

	return documents
}

// FindArticle looks article `number` up among loaded units, optionally
// filtered by a case-insensitive law-name substring. Tier one scans the
// dedicated article units; tier two scans text chunks that report containing
// the number and re-extracts the exact span from the chunk content. Units
// synthesized by tier two are transient and must never be written back to
// the index.
func (l *LegalDocumentLoader) FindArticle(documents []models.LegalDocument, number, lawName string) *models.LegalDocument {
	return l.findStructural(documents, number, lawName, models.SpanTypeArticle)
}

// FindSection mirrors FindArticle for section units.
func (l *LegalDocumentLoader) FindSection(documents []models.LegalDocument, number, lawName string) *models.LegalDocument {
	return l.findStructural(documents, number, lawName, models.SpanTypeSection)
}

func (l *LegalDocumentLoader) findStructural(documents []models.LegalDocument, number, lawName, spanType string) *models.LegalDocument {
	idKey := "article_id"
	containsKey := "contains_articles"
	if spanType == models.SpanTypeSection {
		idKey = "section_id"
		containsKey = "contains_sections"
	}

	for i := range documents {
		doc := &documents[i]
		if doc.ChunkType() != spanType || doc.MetaString(idKey) != number {
			continue
		}
		if !matchesLawName(doc, lawName) {
			continue
		}
		return doc
	}

	for i := range documents {
		doc := &documents[i]
		if doc.ChunkType() != models.ChunkTypeTextChunk {
			continue
		}
		if !matchesLawName(doc, lawName) {
			continue
		}
		if !containsID(doc.MetaStringList(containsKey), number) {
			continue
		}

		var span *models.StructureSpan
		if spanType == models.SpanTypeArticle {
			span = l.analyzer.FindArticleByNumber(doc.Content, number)
		} else {
			span = l.analyzer.FindSectionByNumber(doc.Content, number)
		}
		if span == nil {
			continue
		}

		synthMeta := copyMeta(doc.Metadata)
		delete(synthMeta, "chunk_id")
		delete(synthMeta, "contains_articles")
		delete(synthMeta, "contains_sections")
		synthMeta["chunk_type"] = spanType
		synthMeta[idKey] = number
		return &models.LegalDocument{Content: span.Content, Metadata: synthMeta}
	}

	return nil
}

func matchesLawName(doc *models.LegalDocument, lawName string) bool {
	if lawName == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.LawName()), strings.ToLower(lawName))
}

func containsID(ids []string, number string) bool {
	for _, id := range ids {
		if id == number {
			return true
		}
	}
	return false
}

// spanRunePositions converts the byte positions reported by the regex
// engine into rune offsets, index-aligned with spans.
func spanRunePositions(text string, spans []models.StructureSpan) []int {
	positions := make([]int, len(spans))
	for i, span := range spans {
		positions[i] = utf8.RuneCountInString(text[:span.Position])
	}
	return positions
}

func idsInRange(spans []models.StructureSpan, positions []int, start, end int) []string {
	var ids []string
	for i, span := range spans {
		if positions[i] >= start && positions[i] < end {
			ids = append(ids, span.ID)
		}
	}
	return ids
}

func copyMeta(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
