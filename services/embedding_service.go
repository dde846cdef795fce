package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github/itish2003/legalrag/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
)

// ErrEmbeddingBackendUnavailable is returned when the Ollama embedding
// endpoint was not reachable at startup. Callers get a predictable error
// instead of a failure from deep inside a vector store call.
var ErrEmbeddingBackendUnavailable = errors.New("embedding backend is not available")

// EmbeddingStore is the narrow contract the retriever and the indexer
// depend on: persist unit batches, answer top-k similarity queries, and
// enumerate everything stored (for the structured-lookup fallback tier).
type EmbeddingStore interface {
	IndexDocuments(ctx context.Context, documents []models.LegalDocument) error
	SimilaritySearch(ctx context.Context, query string, k int) ([]models.LegalDocument, error)
	AllDocuments(ctx context.Context) ([]models.LegalDocument, error)
	DeleteBySource(ctx context.Context, source string) error
	Count(ctx context.Context) (int, error)
}

// DocumentEmbedder implements EmbeddingStore on top of a persisted ChromaDB
// collection, embedding text through the local Ollama API.
type DocumentEmbedder struct {
	httpClient *http.Client
	collection chromago.Collection
	ollamaURL  string
	embedModel string
	available  bool
}

// NewDocumentEmbedder wires the embedder to its collection. The available
// flag is the startup capability-probe result for the Ollama endpoint.
func NewDocumentEmbedder(client *http.Client, collection chromago.Collection, ollamaURL, embedModel string, available bool) *DocumentEmbedder {
	return &DocumentEmbedder{
		httpClient: client,
		collection: collection,
		ollamaURL:  ollamaURL,
		embedModel: embedModel,
		available:  available,
	}
}

// IndexDocuments embeds and persists a batch of units. Safe to call
// incrementally; each call adds to the existing collection.
func (e *DocumentEmbedder) IndexDocuments(ctx context.Context, documents []models.LegalDocument) error {
	if !e.available {
		return ErrEmbeddingBackendUnavailable
	}
	if len(documents) == 0 {
		log.Println("EMBEDDER: No documents provided for indexing.")
		return nil
	}

	log.Printf("EMBEDDER: Creating embeddings for %d documents...", len(documents))
	for i, doc := range documents {
		embeddingVector, err := e.EmbedText(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("could not embed document %d: %w", i, err)
		}
		embedding := embeddings.NewEmbeddingFromFloat32(embeddingVector)

		docID := chromago.DocumentID(fmt.Sprintf("%s-%s-%d", uuid.New().String(), doc.ChunkType(), i))
		err = e.collection.Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(doc.Content),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(toChromaMetadata(doc.Metadata)),
		)
		if err != nil {
			return fmt.Errorf("failed to add document %d to chromadb: %w", i, err)
		}
	}
	log.Printf("EMBEDDER: Successfully indexed %d documents.", len(documents))
	return nil
}

// SimilaritySearch returns the k nearest units to the query. An empty
// collection yields an empty slice.
func (e *DocumentEmbedder) SimilaritySearch(ctx context.Context, query string, k int) ([]models.LegalDocument, error) {
	if !e.available {
		return nil, ErrEmbeddingBackendUnavailable
	}

	queryEmbedding, err := e.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(queryEmbedding)

	results, err := e.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var documents []models.LegalDocument
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}
			var metadataMap map[string]interface{}
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				metadataMap = metadataToMap(metadataGroups[0][i])
			}
			documents = append(documents, models.LegalDocument{
				Content:  doc.ContentString(),
				Metadata: metadataMap,
			})
		}
	}
	log.Printf("EMBEDDER: Retrieved %d documents for query.", len(documents))
	return documents, nil
}

// AllDocuments enumerates every unit in the collection. Used by the
// retriever's structured-lookup path and by the indexer's state scan.
func (e *DocumentEmbedder) AllDocuments(ctx context.Context) ([]models.LegalDocument, error) {
	results, err := e.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	docs := results.GetDocuments()
	metadatas := results.GetMetadatas()

	documents := make([]models.LegalDocument, 0, len(docs))
	for i := range docs {
		var metadataMap map[string]interface{}
		if len(metadatas) > i && metadatas[i] != nil {
			metadataMap = metadataToMap(metadatas[i])
		}
		documents = append(documents, models.LegalDocument{
			Content:  docs[i].ContentString(),
			Metadata: metadataMap,
		})
	}
	return documents, nil
}

// DeleteBySource removes every unit that originated from one source file.
func (e *DocumentEmbedder) DeleteBySource(ctx context.Context, source string) error {
	where := chromago.EqString("source", source)
	return e.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

// Count reports how many units the collection holds.
func (e *DocumentEmbedder) Count(ctx context.Context) (int, error) {
	count, err := e.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// EmbedText generates an embedding vector for text using Ollama.
func (e *DocumentEmbedder) EmbedText(ctx context.Context, textToEmbed string) ([]float32, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  e.embedModel,
		Prompt: textToEmbed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.ollamaURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return ollamaResp.Embedding, nil
}

// toChromaMetadata converts a unit metadata map into chroma attributes.
// String lists are comma-joined; chroma metadata values are scalar.
func toChromaMetadata(meta map[string]interface{}) chromago.DocumentMetadata {
	var attrs []*chromago.MetaAttribute
	for key, value := range meta {
		switch v := value.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(key, v))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(key, int64(v)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(key, v))
		case []string:
			attrs = append(attrs, chromago.NewStringAttribute(key, strings.Join(v, ",")))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(key, fmt.Sprintf("%v", v)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// metadataToMap converts chroma document metadata back into a plain map.
// The DocumentMetadata struct has no public accessor for its values; the
// supported conversion is a JSON round-trip.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return map[string]interface{}{}
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	return metadataMap
}
