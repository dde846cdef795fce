package services

import (
	"context"
	"testing"

	"github/itish2003/legalrag/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records the prompts it was asked to complete.
type fakeGenerator struct {
	systemPrompt string
	prompt       string
	answer       string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.systemPrompt = systemPrompt
	f.prompt = prompt
	return f.answer, nil
}

func newTestRAGService(t *testing.T) (RAGService, *fakeStore, *fakeGenerator) {
	t.Helper()
	store, loader := testLawStore(t)
	retriever := NewLegalDocumentRetriever(store, loader, 4)
	generator := &fakeGenerator{answer: "generated answer"}
	svc := NewRAGService(loader, store, retriever, generator, Capabilities{EmbeddingBackend: true, GenerationBackend: true})
	return svc, store, generator
}

func TestQueryArticleLookupAnswersFromUnit(t *testing.T) {
	svc, store, generator := newTestRAGService(t)

	resp, err := svc.Query(context.Background(), models.QueryTextRequest{Query: "Article 2 of the Test Law"})
	require.NoError(t, err)

	assert.Equal(t, "generated answer", resp.Answer)
	assert.True(t, resp.Found)
	assert.Equal(t, models.SpanTypeArticle, resp.LookupType)
	assert.Equal(t, "2", resp.LookupNumber)
	require.Len(t, resp.SourceDocs, 1)
	assert.Contains(t, resp.SourceDocs[0].Content, "Bar.")

	// The generator sees the retrieved unit in its context, and the lookup
	// never touched the similarity search.
	assert.Contains(t, generator.prompt, "Bar.")
	assert.Contains(t, generator.systemPrompt, "ONLY on the context provided")
	assert.Zero(t, store.searchCalls)
}

func TestQueryMissedLookupRendersNotFound(t *testing.T) {
	svc, store, _ := newTestRAGService(t)

	resp, err := svc.Query(context.Background(), models.QueryTextRequest{Query: "Article 99 of the Test Law"})
	require.NoError(t, err)

	assert.False(t, resp.Found)
	assert.Equal(t, models.SpanTypeArticle, resp.LookupType)
	assert.Equal(t, "99", resp.LookupNumber)
	assert.Contains(t, resp.Answer, "99")
	assert.Contains(t, resp.Answer, "could not find")
	// The law name is echoed back in the user's own casing.
	assert.Contains(t, resp.Answer, `"Test Law"`)
	assert.NotContains(t, resp.Answer, `"test law"`)
	assert.Empty(t, resp.SourceDocs)
	assert.Zero(t, store.searchCalls)
}

func TestQueryGeneralGoesThroughSimilaritySearch(t *testing.T) {
	svc, store, generator := newTestRAGService(t)

	resp, err := svc.Query(context.Background(), models.QueryTextRequest{Query: "what is the penalty for theft"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.searchCalls)
	assert.Equal(t, "what is the penalty for theft", store.searchQuery)
	assert.Equal(t, "generated answer", resp.Answer)
	assert.NotEmpty(t, resp.SourceDocs)
	assert.Contains(t, generator.prompt, "what is the penalty for theft")
}

func TestQueryEmptyIndexRefuses(t *testing.T) {
	loader := NewLegalDocumentLoader("unused")
	store := &fakeStore{}
	retriever := NewLegalDocumentRetriever(store, loader, 4)
	svc := NewRAGService(loader, store, retriever, &fakeGenerator{answer: "unused"}, Capabilities{})

	resp, err := svc.Query(context.Background(), models.QueryTextRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, NoAnswerMessage, resp.Answer)
	assert.False(t, resp.Found)
}

func TestQueryWithoutGeneratorReturnsContext(t *testing.T) {
	store, loader := testLawStore(t)
	retriever := NewLegalDocumentRetriever(store, loader, 4)
	svc := NewRAGService(loader, store, retriever, nil, Capabilities{EmbeddingBackend: true})

	resp, err := svc.Query(context.Background(), models.QueryTextRequest{Query: "Article 1 of the Test Law"})
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "Foo.")
	assert.Contains(t, resp.Answer, "Article 1 (Source: test_law.pdf)")
}

func TestStatusReportsCapabilities(t *testing.T) {
	svc, store, _ := newTestRAGService(t)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	count, _ := store.Count(context.Background())
	assert.Equal(t, count, status.DocumentsIndexed)
	assert.True(t, status.EmbeddingBackend)
	assert.True(t, status.GenerationBackend)
}
