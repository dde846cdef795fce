package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaAccessorsHandleStoreRoundTrip(t *testing.T) {
	// After the trip through the vector store, ints come back as float64
	// and string lists come back comma-joined.
	doc := LegalDocument{
		Content: "Article 1. Foo.",
		Metadata: map[string]interface{}{
			"chunk_type":        ChunkTypeTextChunk,
			"source":            "data/test_law.pdf",
			"law_name":          "Test Law",
			"chunk_id":          float64(3),
			"article_count":     float64(12),
			"contains_articles": "1,2,3",
		},
	}

	assert.Equal(t, ChunkTypeTextChunk, doc.ChunkType())
	assert.Equal(t, "Test Law", doc.LawName())
	assert.Equal(t, 3, doc.MetaInt("chunk_id"))
	assert.Equal(t, 12, doc.MetaInt("article_count"))
	assert.Equal(t, []string{"1", "2", "3"}, doc.ContainsArticles())
}

func TestMetaAccessorsHandleNativeValues(t *testing.T) {
	doc := LegalDocument{
		Metadata: map[string]interface{}{
			"chunk_id":          7,
			"contains_sections": []string{"4", "5"},
		},
	}

	assert.Equal(t, 7, doc.MetaInt("chunk_id"))
	assert.Equal(t, []string{"4", "5"}, doc.ContainsSections())
}

func TestMetaAccessorsMissingKeys(t *testing.T) {
	doc := LegalDocument{}

	assert.Empty(t, doc.ChunkType())
	assert.Zero(t, doc.MetaInt("chunk_id"))
	assert.Nil(t, doc.ContainsArticles())
}
