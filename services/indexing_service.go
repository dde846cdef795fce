package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github/itish2003/legalrag/models"

	"github.com/fsnotify/fsnotify"
	"github.com/tmc/langchaingo/textsplitter"
)

// CorpusIndexingService keeps the vector index in sync with the corpus
// directory. PDFs go through the structure-aware loader; plain-text
// supplements (.txt/.md) are chunked with a recursive splitter. Files are
// fingerprinted so unchanged ones are skipped, and a changed file is always
// deleted and re-ingested as a fresh set of units.
type CorpusIndexingService struct {
	embedder EmbeddingStore
	loader   *LegalDocumentLoader
}

// NewCorpusIndexingService creates a new indexing service.
func NewCorpusIndexingService(embedder EmbeddingStore, loader *LegalDocumentLoader) *CorpusIndexingService {
	return &CorpusIndexingService{
		embedder: embedder,
		loader:   loader,
	}
}

// IndexState holds the current hash of a file in our index.
type IndexState struct {
	Hash string
}

// WatchDirectory starts a long-running process to watch for file changes in real-time.
func (s *CorpusIndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	// Goroutine to handle events from the watcher.
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// We only care about supported file types.
				if !isSupportedFile(event.Name) {
					continue
				}

				log.Printf("WATCHER EVENT: %s", event)

				// A Create or Write event means we need to index the file.
				// Many editors perform a "write" by creating a temp file and renaming,
				// which can trigger multiple events. We handle Create and Write the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					// Delete old versions before re-indexing
					s.embedder.DeleteBySource(ctx, event.Name)
					if err := s.processAndEmbedFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					// Rename is often treated as Remove by watchers.
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.embedder.DeleteBySource(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	err = watcher.Add(dirPath)
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	// Block until the context is cancelled (e.g., server shutdown).
	<-ctx.Done()
}

// ScanAndIndexDirectory is the main function to sync the corpus directory with ChromaDB.
func (s *CorpusIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	indexedFiles, err := s.getCurrentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isSupportedFile(path) {
			localFiles[path] = true
			hash, err := calculateFileHash(path)
			if err != nil {
				log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
				return nil
			}

			if state, ok := indexedFiles[path]; ok {
				if state.Hash == hash {
					return nil // File is unchanged, skip.
				}
				log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
				if err := s.embedder.DeleteBySource(ctx, path); err != nil {
					log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
					return nil
				}
			}

			log.Printf("INDEXER: Indexing new/modified file: %s", path)
			if err := s.processAndEmbedFile(ctx, path, hash); err != nil {
				log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	// Handle deletions
	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.embedder.DeleteBySource(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Directory scan finished.")
}

func (s *CorpusIndexingService) processAndEmbedFile(ctx context.Context, path, hash string) error {
	var documents []models.LegalDocument
	var err error

	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		documents, err = s.loader.ProcessFile(path)
		if err != nil {
			return err
		}
	} else {
		documents, err = s.chunkTextFile(path)
		if err != nil {
			return err
		}
	}
	log.Printf("INDEXER: Built %d units from %s.", len(documents), path)

	for i := range documents {
		documents[i].Metadata["file_hash"] = hash
	}
	return s.embedder.IndexDocuments(ctx, documents)
}

// chunkTextFile splits a plain-text supplement into text_chunk units with
// the recursive character splitter. These files carry no article/section
// structure, so no structural units are emitted for them.
func (s *CorpusIndexingService) chunkTextFile(path string) ([]models.LegalDocument, error) {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(defaultChunkSize),
		textsplitter.WithChunkOverlap(defaultChunkOverlap),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return nil, err
	}

	documents := make([]models.LegalDocument, 0, len(chunks))
	for i, chunk := range chunks {
		documents = append(documents, models.LegalDocument{
			Content: chunk,
			Metadata: map[string]interface{}{
				"source":     path,
				"filename":   filepath.Base(path),
				"law_name":   deriveLawName(path, ""),
				"chunk_type": models.ChunkTypeTextChunk,
				"chunk_id":   i,
			},
		})
	}
	return documents, nil
}

func (s *CorpusIndexingService) getCurrentIndexState(ctx context.Context) (map[string]IndexState, error) {
	state := make(map[string]IndexState)
	documents, err := s.embedder.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range documents {
		doc := &documents[i]
		path := doc.Source()
		if path == "" {
			continue
		}
		hash := doc.MetaString("file_hash")
		if hash == "" {
			continue
		}
		if _, exists := state[path]; !exists {
			state[path] = IndexState{Hash: hash}
		}
	}
	return state, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
