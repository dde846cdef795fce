package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github/itish2003/legalrag/models"
)

const defaultTopK = 4

// lookupPattern is one row of the intent classification grammar: a regex,
// the lookup type it produces, and whether its second capture group is a
// law name. Rows are tried in order and the first match wins.
type lookupPattern struct {
	re          *regexp.Regexp
	lookupType  string
	capturesLaw bool
}

// Latin-script patterns are written lower-case and matched against a
// lower-cased copy of the query; Arabic script has no case, so the fold is
// a no-op there. Article rows precede section rows: a query matching both
// grammars is always classified as an article lookup. Within each type the
// tiers run from most to least specific: number plus a law name ending in
// a law/code/decree word, number plus any trailing law name, bare number.
var lookupPatterns = []lookupPattern{
	// Article lookups.
	{regexp.MustCompile(`article\s+(\d+)\s+(?:of|from)\s+(?:the\s+)?(.+?(?:law|code|act|decree))`), models.SpanTypeArticle, true},
	{regexp.MustCompile(`(?:المادة|مادة)\s+(\d+)\s+من\s+((?:قانون|نظام|مرسوم)\s+.+)`), models.SpanTypeArticle, true},
	{regexp.MustCompile(`article\s+(\d+)\s+(?:of|from)\s+(?:the\s+)?(.+)`), models.SpanTypeArticle, true},
	{regexp.MustCompile(`(?:المادة|مادة)\s+(\d+)\s+من\s+(.+)`), models.SpanTypeArticle, true},
	{regexp.MustCompile(`article\s+(\d+)`), models.SpanTypeArticle, false},
	{regexp.MustCompile(`(?:المادة|مادة)\s+(\d+)`), models.SpanTypeArticle, false},

	// Section lookups.
	{regexp.MustCompile(`(?:section|chapter)\s+(\d+)\s+(?:of|from)\s+(?:the\s+)?(.+?(?:law|code|act|decree))`), models.SpanTypeSection, true},
	{regexp.MustCompile(`(?:القسم|الفصل|الباب)\s+(\d+)\s+من\s+((?:قانون|نظام|مرسوم)\s+.+)`), models.SpanTypeSection, true},
	{regexp.MustCompile(`(?:section|chapter)\s+(\d+)\s+(?:of|from)\s+(?:the\s+)?(.+)`), models.SpanTypeSection, true},
	{regexp.MustCompile(`(?:القسم|الفصل|الباب)\s+(\d+)\s+من\s+(.+)`), models.SpanTypeSection, true},
	{regexp.MustCompile(`(?:section|chapter)\s+(\d+)`), models.SpanTypeSection, false},
	{regexp.MustCompile(`(?:القسم|الفصل|الباب)\s+(\d+)`), models.SpanTypeSection, false},
}

// LegalDocumentRetriever routes queries: citation-style lookups ("Article 5
// of the Labour Law", "المادة 5 من قانون العمل") resolve against the stored
// units by number and law name; everything else goes to vector similarity
// search. A citation that resolves to nothing is reported as not found
// rather than degraded to a similarity search.
type LegalDocumentRetriever struct {
	store  EmbeddingStore
	loader *LegalDocumentLoader
	topK   int
}

// NewLegalDocumentRetriever builds a retriever over the given store. topK
// is the default result count for general queries; values outside 1..10
// fall back to 4.
func NewLegalDocumentRetriever(store EmbeddingStore, loader *LegalDocumentLoader, topK int) *LegalDocumentRetriever {
	if topK < 1 || topK > 10 {
		topK = defaultTopK
	}
	return &LegalDocumentRetriever{
		store:  store,
		loader: loader,
		topK:   topK,
	}
}

// classify runs the intent grammar over the query and returns the lookup
// type, the extracted number, and the law name (may be empty). A type of ""
// means no grammar matched: a general query. Matching happens on a
// lower-cased copy, but the captures are sliced out of the original query
// so law names keep the user's casing.
func classify(query string) (lookupType, number, lawName string) {
	folded := strings.ToLower(query)
	// ASCII folding preserves byte offsets; if a non-ASCII fold shifted
	// them, fall back to slicing the folded copy.
	source := query
	if len(folded) != len(query) {
		source = folded
	}
	for _, p := range lookupPatterns {
		m := p.re.FindStringSubmatchIndex(folded)
		if m == nil {
			continue
		}
		number = source[m[2]:m[3]]
		if p.capturesLaw && len(m) >= 6 && m[4] >= 0 {
			lawName = strings.Trim(strings.TrimSpace(source[m[4]:m[5]]), "؟?!.،,")
		}
		return p.lookupType, number, lawName
	}
	return "", "", ""
}

// GetArticleOrSection classifies the query and, for a structured lookup,
// resolves it against the full unit enumeration. The returned result always
// carries the lookup type and extracted number so callers can render a
// precise not-found message.
func (r *LegalDocumentRetriever) GetArticleOrSection(ctx context.Context, query string) (*models.LookupResult, error) {
	lookupType, number, lawName := classify(query)
	result := &models.LookupResult{Type: lookupType, Number: number, LawName: lawName}
	if lookupType == "" {
		return result, nil
	}

	documents, err := r.store.AllDocuments(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to enumerate indexed documents: %w", err)
	}

	var doc *models.LegalDocument
	if lookupType == models.SpanTypeArticle {
		doc = r.loader.FindArticle(documents, number, lawName)
	} else {
		doc = r.loader.FindSection(documents, number, lawName)
	}
	if doc == nil {
		log.Printf("RETRIEVER: %s %s not found (law filter: %q)", lookupType, number, lawName)
		return result, nil
	}

	result.Document = doc
	result.Found = true
	return result, nil
}

// Retrieve applies the full routing state machine. k overrides the
// configured default for the general-query branch only; pass 0 to use the
// default. A structured lookup returns at most one unit and never falls
// back to similarity search.
func (r *LegalDocumentRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.LegalDocument, error) {
	lookup, err := r.GetArticleOrSection(ctx, query)
	if err != nil {
		return nil, err
	}
	if lookup.Type != "" {
		if lookup.Found {
			return []models.LegalDocument{*lookup.Document}, nil
		}
		return []models.LegalDocument{}, nil
	}

	if k <= 0 {
		k = r.topK
	}
	return r.store.SimilaritySearch(ctx, query, k)
}

// GetRelevantText retrieves for the query and joins the results into one
// human-readable block, labelling each unit by its chunk type and source.
func (r *LegalDocumentRetriever) GetRelevantText(ctx context.Context, query string) (string, error) {
	documents, err := r.Retrieve(ctx, query, 0)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		return "No relevant information found.", nil
	}
	return FormatDocuments(documents), nil
}

// FormatDocuments renders retrieved units as a context block for the QA
// prompt: "Article N"/"Section N" for structural units, "Document i" for
// chunks and full documents, each with its source filename.
func FormatDocuments(documents []models.LegalDocument) string {
	parts := make([]string, 0, len(documents))
	for i, doc := range documents {
		source := doc.Source()
		if source == "" {
			source = "Unknown source"
		} else {
			source = filepath.Base(source)
		}

		var label string
		switch doc.ChunkType() {
		case models.ChunkTypeArticle:
			label = fmt.Sprintf("Article %s", doc.ArticleID())
		case models.ChunkTypeSection:
			label = fmt.Sprintf("Section %s", doc.SectionID())
		default:
			label = fmt.Sprintf("Document %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("%s (Source: %s):\n%s\n", label, source, doc.Content))
	}
	return strings.Join(parts, "\n")
}
