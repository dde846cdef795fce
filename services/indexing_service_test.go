package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanAndIndexSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "supplement.txt",
		strings.Repeat("The employer shall keep a register of workers. ", 40))

	store := &fakeStore{}
	indexer := NewCorpusIndexingService(store, NewLegalDocumentLoader(dir))

	indexer.ScanAndIndexDirectory(context.Background(), dir)
	require.Equal(t, 1, store.indexCalls)
	firstCount := len(store.documents)
	require.Greater(t, firstCount, 0)
	for i := range store.documents {
		assert.Equal(t, path, store.documents[i].Source())
		assert.NotEmpty(t, store.documents[i].MetaString("file_hash"))
		assert.Contains(t, store.documents[i].Content, "register of workers")
	}

	// Same content, same hash: the second scan must not touch the index.
	indexer.ScanAndIndexDirectory(context.Background(), dir)
	assert.Equal(t, 1, store.indexCalls)
	assert.Zero(t, store.deleteCalls)
	assert.Len(t, store.documents, firstCount)
}

func TestScanAndIndexReingestsChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "supplement.txt",
		strings.Repeat("The employer shall keep a register of workers. ", 40))

	store := &fakeStore{}
	indexer := NewCorpusIndexingService(store, NewLegalDocumentLoader(dir))
	indexer.ScanAndIndexDirectory(context.Background(), dir)
	require.Equal(t, 1, store.indexCalls)

	writeCorpusFile(t, dir, "supplement.txt",
		strings.Repeat("The worker is entitled to annual paid leave. ", 40))
	indexer.ScanAndIndexDirectory(context.Background(), dir)

	// Old units are deleted before the fresh set is ingested.
	assert.Equal(t, 2, store.indexCalls)
	assert.Equal(t, 1, store.deleteCalls)
	require.NotEmpty(t, store.documents)
	for i := range store.documents {
		assert.Contains(t, store.documents[i].Content, "annual paid leave")
	}
}

func TestScanAndIndexRemovesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "supplement.txt",
		strings.Repeat("The employer shall keep a register of workers. ", 40))

	store := &fakeStore{}
	indexer := NewCorpusIndexingService(store, NewLegalDocumentLoader(dir))
	indexer.ScanAndIndexDirectory(context.Background(), dir)
	require.NotEmpty(t, store.documents)

	require.NoError(t, os.Remove(path))
	indexer.ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 1, store.deleteCalls)
	assert.Empty(t, store.documents)
}

func TestChunkTextFileRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "notes.docx", "not a supported format")

	indexer := NewCorpusIndexingService(&fakeStore{}, NewLegalDocumentLoader(dir))
	_, err := indexer.chunkTextFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
