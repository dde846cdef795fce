package models

type QueryRAGResponse struct {
	Answer       string          `json:"answer"`
	SourceDocs   []LegalDocument `json:"source_docs,omitempty"`
	LookupType   string          `json:"lookup_type,omitempty"`
	LookupNumber string          `json:"lookup_number,omitempty"`
	Found        bool            `json:"found"`
	Error        string          `json:"error,omitempty"`
}

type ReloadCorpusResponse struct {
	FilesProcessed   int    `json:"files_processed"`
	DocumentsIndexed int    `json:"documents_indexed"`
	Message          string `json:"message"`
}

type GetDocumentsResponse struct {
	Count     int             `json:"count"`
	Documents []LegalDocument `json:"documents"`
}

type StatusResponse struct {
	DocumentsIndexed  int  `json:"documents_indexed"`
	EmbeddingBackend  bool `json:"embedding_backend"`
	GenerationBackend bool `json:"generation_backend"`
}
