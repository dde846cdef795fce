package services

import (
	"strings"
	"testing"

	"github/itish2003/legalrag/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileMeta() map[string]interface{} {
	return map[string]interface{}{
		"source":   "data/test_law.pdf",
		"filename": "test_law.pdf",
		"law_name": "Test Law",
	}
}

// legalText builds a synthetic law long enough to produce several chunks.
func legalText() string {
	var sb strings.Builder
	sb.WriteString("The Test Law\n\n")
	for i := 1; i <= 6; i++ {
		sb.WriteString("Article ")
		sb.WriteString([]string{"", "1", "2", "3", "4", "5", "6"}[i])
		sb.WriteString(": provision number ")
		sb.WriteString([]string{"", "one", "two", "three", "four", "five", "six"}[i])
		sb.WriteString(".\n")
		sb.WriteString(strings.Repeat("Some legal prose follows the heading. ", 8))
		sb.WriteString("\n")
	}
	sb.WriteString("Chapter 1: Final Provisions\n")
	sb.WriteString(strings.Repeat("Closing words. ", 12))
	return sb.String()
}

func TestBuildDocumentsEmitsAllLayers(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	text := legalText()

	documents := loader.buildDocuments(text, testFileMeta())
	require.NotEmpty(t, documents)

	byType := map[string][]models.LegalDocument{}
	for _, doc := range documents {
		byType[doc.ChunkType()] = append(byType[doc.ChunkType()], doc)
	}

	require.Len(t, byType[models.ChunkTypeFullDocument], 1)
	assert.NotEmpty(t, byType[models.ChunkTypeTextChunk])
	assert.Len(t, byType[models.ChunkTypeArticle], 6)
	assert.Len(t, byType[models.ChunkTypeSection], 1)

	// Every unit from the same file shares the file-level metadata and the
	// structure counts.
	for _, doc := range documents {
		assert.Equal(t, "data/test_law.pdf", doc.Source())
		assert.Equal(t, "test_law.pdf", doc.Filename())
		assert.Equal(t, 6, doc.MetaInt("article_count"))
		assert.Equal(t, 1, doc.MetaInt("section_count"))
	}

	// Chunk ids are sequential among the text chunks of the file.
	for i, chunk := range byType[models.ChunkTypeTextChunk] {
		assert.Equal(t, i, chunk.MetaInt("chunk_id"))
	}
}

func TestBuildDocumentsCapsFullDocument(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	text := strings.Repeat("Article 1: rule. ", 2000)

	documents := loader.buildDocuments(text, testFileMeta())
	full := documents[0]
	require.Equal(t, models.ChunkTypeFullDocument, full.ChunkType())
	assert.LessOrEqual(t, len([]rune(full.Content)), maxFullDocumentChars)
}

func TestChunkAnnotationsMatchSpanPositions(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	loader.chunkSize = 300
	loader.chunkOverlap = 60
	text := legalText()

	documents := loader.buildDocuments(text, testFileMeta())
	spans := loader.analyzer.ExtractArticles(text)
	positions := spanRunePositions(text, spans)
	stride := loader.chunkSize - loader.chunkOverlap

	checked := 0
	for _, doc := range documents {
		if doc.ChunkType() != models.ChunkTypeTextChunk {
			continue
		}
		start := doc.MetaInt("chunk_id") * stride
		end := start + loader.chunkSize
		for _, id := range doc.ContainsArticles() {
			found := false
			for i, span := range spans {
				if span.ID == id && positions[i] >= start && positions[i] < end {
					found = true
					break
				}
			}
			assert.True(t, found, "article %s listed by chunk %d has no span in [%d,%d)", id, doc.MetaInt("chunk_id"), start, end)
			checked++
		}
	}
	assert.Greater(t, checked, 0, "expected at least one annotated article")
}

func TestDeriveLawName(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		title string
		want  string
	}{
		{"separators become spaces", "data/oman_labour_law_2023.pdf", "", "oman labour law 2023"},
		{"short filename prefers title", "data/law1.pdf", "Omani Labour Law", "Omani Labour Law"},
		{"short filename without title keeps name", "data/law1.pdf", "", "law1"},
		{"long filename beats title", "data/penal-code-royal-decree.pdf", "Untitled", "penal code royal decree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveLawName(tt.path, tt.title))
		})
	}
}

func TestFindArticleDirect(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	documents := loader.buildDocuments(legalText(), testFileMeta())

	found := loader.FindArticle(documents, "2", "")
	require.NotNil(t, found)
	assert.Equal(t, models.ChunkTypeArticle, found.ChunkType())
	assert.Equal(t, "2", found.ArticleID())
	assert.Contains(t, found.Content, "provision number two")

	// Law-name filter is a case-insensitive substring match.
	assert.NotNil(t, loader.FindArticle(documents, "2", "test law"))
	assert.Nil(t, loader.FindArticle(documents, "2", "commercial code"))
	assert.Nil(t, loader.FindArticle(documents, "99", ""))
}

func TestFindArticleSynthesizesFromChunk(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	documents := loader.buildDocuments(legalText(), testFileMeta())

	// Keep only the text chunks so tier one has nothing to find.
	var chunksOnly []models.LegalDocument
	for _, doc := range documents {
		if doc.ChunkType() == models.ChunkTypeTextChunk {
			chunksOnly = append(chunksOnly, doc)
		}
	}
	require.NotEmpty(t, chunksOnly)

	found := loader.FindArticle(chunksOnly, "1", "")
	require.NotNil(t, found)
	assert.Equal(t, models.ChunkTypeArticle, found.ChunkType())
	assert.Equal(t, "1", found.ArticleID())
	assert.Contains(t, found.Content, "provision number one")
	// The synthesized unit sheds its chunk-specific metadata.
	assert.NotContains(t, found.Metadata, "chunk_id")
	assert.NotContains(t, found.Metadata, "contains_articles")
}

func TestFindSection(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	documents := loader.buildDocuments(legalText(), testFileMeta())

	found := loader.FindSection(documents, "1", "")
	require.NotNil(t, found)
	assert.Equal(t, models.ChunkTypeSection, found.ChunkType())
	assert.Contains(t, found.Content, "Final Provisions")

	assert.Nil(t, loader.FindSection(documents, "9", ""))
}

func TestLoadDocumentsEmptyDirectory(t *testing.T) {
	loader := NewLegalDocumentLoader(t.TempDir())
	assert.Empty(t, loader.LoadDocuments())
}

func TestLoadDocumentsMissingDirectory(t *testing.T) {
	loader := NewLegalDocumentLoader("does/not/exist")
	assert.Empty(t, loader.LoadDocuments())
}
