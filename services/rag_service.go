package services

import (
	"context"
	"fmt"
	"log"

	"github/itish2003/legalrag/models"
)

// RAGService interface defines methods for RAG operations
type RAGService interface {
	Query(ctx context.Context, req models.QueryTextRequest) (*models.QueryRAGResponse, error)
	ReloadCorpus(ctx context.Context) (*models.ReloadCorpusResponse, error)
	GetAllDocuments(ctx context.Context) (*models.GetDocumentsResponse, error)
	Status(ctx context.Context) (*models.StatusResponse, error)
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	loader       *LegalDocumentLoader
	store        EmbeddingStore
	retriever    *LegalDocumentRetriever
	generator    Generator
	capabilities Capabilities
}

// NewRAGService creates a new RAG service instance. generator may be nil
// when no generation backend is available; queries then return the
// retrieved context verbatim.
func NewRAGService(loader *LegalDocumentLoader, store EmbeddingStore, retriever *LegalDocumentRetriever, generator Generator, capabilities Capabilities) RAGService {
	return &ragServiceImpl{
		loader:       loader,
		store:        store,
		retriever:    retriever,
		generator:    generator,
		capabilities: capabilities,
	}
}

// Query implements RAGService. It routes the query through the retriever's
// state machine, then asks the generation backend to answer strictly from
// the retrieved context.
func (r *ragServiceImpl) Query(ctx context.Context, req models.QueryTextRequest) (*models.QueryRAGResponse, error) {
	log.Printf("SERVICE: Querying RAG with: '%s'", req.Query)

	lookup, err := r.retriever.GetArticleOrSection(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	// A citation-style query that resolved to nothing is answered with a
	// templated not-found message carrying the extracted number. It must
	// not degrade into a similarity search.
	if lookup.Type != "" && !lookup.Found {
		return &models.QueryRAGResponse{
			Answer:       notFoundMessage(lookup),
			LookupType:   lookup.Type,
			LookupNumber: lookup.Number,
			Found:        false,
		}, nil
	}

	var documents []models.LegalDocument
	if lookup.Found {
		documents = []models.LegalDocument{*lookup.Document}
	} else {
		documents, err = r.retriever.Retrieve(ctx, req.Query, req.TopK)
		if err != nil {
			return nil, err
		}
	}

	if len(documents) == 0 {
		return &models.QueryRAGResponse{
			Answer:     NoAnswerMessage,
			LookupType: lookup.Type,
			Found:      false,
		}, nil
	}

	contextText := FormatDocuments(documents)

	answer := contextText
	if r.generator != nil {
		answer, err = r.generator.Generate(ctx, GetSystemPrompt(), BuildQAPrompt(contextText, req.Query))
		if err != nil {
			return nil, fmt.Errorf("could not generate answer: %w", err)
		}
	} else {
		log.Println("SERVICE: No generation backend configured, returning retrieved context.")
	}

	return &models.QueryRAGResponse{
		Answer:       answer,
		SourceDocs:   documents,
		LookupType:   lookup.Type,
		LookupNumber: lookup.Number,
		Found:        true,
	}, nil
}

// ReloadCorpus implements RAGService. It re-runs the loader over the corpus
// directory and indexes the resulting units.
func (r *ragServiceImpl) ReloadCorpus(ctx context.Context) (*models.ReloadCorpusResponse, error) {
	log.Println("SERVICE: Reloading corpus...")

	documents := r.loader.LoadDocuments()
	if len(documents) == 0 {
		return &models.ReloadCorpusResponse{
			Message: "No documents found in the corpus directory, nothing to index.",
		}, nil
	}

	if err := r.store.IndexDocuments(ctx, documents); err != nil {
		return nil, fmt.Errorf("failed to index corpus documents: %w", err)
	}

	sources := map[string]bool{}
	for _, doc := range documents {
		sources[doc.Source()] = true
	}

	return &models.ReloadCorpusResponse{
		FilesProcessed:   len(sources),
		DocumentsIndexed: len(documents),
		Message:          "Corpus reloaded successfully.",
	}, nil
}

// GetAllDocuments implements RAGService to retrieve every indexed unit.
func (r *ragServiceImpl) GetAllDocuments(ctx context.Context) (*models.GetDocumentsResponse, error) {
	log.Println("SERVICE: Getting all documents from ChromaDB...")

	documents, err := r.store.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if documents == nil {
		documents = []models.LegalDocument{}
	}

	log.Printf("SERVICE: Successfully retrieved %d documents", len(documents))
	return &models.GetDocumentsResponse{
		Count:     len(documents),
		Documents: documents,
	}, nil
}

// Status implements RAGService.
func (r *ragServiceImpl) Status(ctx context.Context) (*models.StatusResponse, error) {
	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.StatusResponse{
		DocumentsIndexed:  count,
		EmbeddingBackend:  r.capabilities.EmbeddingBackend,
		GenerationBackend: r.capabilities.GenerationBackend,
	}, nil
}

func notFoundMessage(lookup *models.LookupResult) string {
	kind := "Article"
	if lookup.Type == models.SpanTypeSection {
		kind = "Section"
	}
	if lookup.LawName != "" {
		return fmt.Sprintf("Sorry, I could not find %s %s of %q in the indexed legal documents.", kind, lookup.Number, lookup.LawName)
	}
	return fmt.Sprintf("Sorry, I could not find %s %s in the indexed legal documents.", kind, lookup.Number)
}
