package models

// Span types produced by the structure analyzer.
const (
	SpanTypeArticle = "article"
	SpanTypeSection = "section"
)

// StructureSpan is one match of the article/section grammar inside a
// document. Content runs from the match start to the start of the next
// same-type match (or end of text for the last one). Position is the
// character offset of the match start and is used only for ordering.
type StructureSpan struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FullMatch string `json:"full_match"`
	Content   string `json:"content"`
	Position  int    `json:"position"`
}

// DocumentStructure is the aggregate result of analyzing one document.
// Articles and sections are independent partitions of the same text: an
// ambiguous heading (e.g. "الفصل") may appear in both.
type DocumentStructure struct {
	Articles     []StructureSpan `json:"articles"`
	Sections     []StructureSpan `json:"sections"`
	ArticleCount int             `json:"article_count"`
	SectionCount int             `json:"section_count"`
}

// LookupResult is the outcome of classifying and resolving a query
// against the structured-lookup grammars. Type is "article", "section",
// or "" when the query did not match either grammar (a general query).
// A matched grammar with Found == false is a deliberate miss: the caller
// renders a not-found message with Number instead of falling back to
// vector search.
type LookupResult struct {
	Document *LegalDocument `json:"document,omitempty"`
	Type     string         `json:"type"`
	Number   string         `json:"number,omitempty"`
	LawName  string         `json:"law_name,omitempty"`
	Found    bool           `json:"found"`
}
