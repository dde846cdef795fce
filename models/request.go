package models

type QueryTextRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}
