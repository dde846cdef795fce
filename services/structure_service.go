package services

import (
	"regexp"
	"sort"
	"strings"

	"github/itish2003/legalrag/models"
)

// DocumentStructureAnalyzer segments raw legal text into articles and
// sections using ordered regex grammars covering both English and Arabic.
// Articles and sections are extracted independently over the full text, so
// an ambiguous heading like "الفصل" shows up in both partitions. That is the
// behavior of the source corpus, not something to resolve here.
type DocumentStructureAnalyzer struct {
	articlePatterns []*regexp.Regexp
	sectionPatterns []*regexp.Regexp
}

// NewDocumentStructureAnalyzer compiles the article and section grammars.
func NewDocumentStructureAnalyzer() *DocumentStructureAnalyzer {
	return &DocumentStructureAnalyzer{
		articlePatterns: []*regexp.Regexp{
			regexp.MustCompile(`Article\s+(\d+)[:.\s]`),
			regexp.MustCompile(`Section\s+(\d+)[:.\s]`),
			regexp.MustCompile(`المادة\s+(\d+)[:.\s]`),
			regexp.MustCompile(`مادة\s+(\d+)[:.\s]`),
			regexp.MustCompile(`الفصل\s+(\d+)[:.\s]`),
			regexp.MustCompile(`القسم\s+(\d+)[:.\s]`),
		},
		sectionPatterns: []*regexp.Regexp{
			regexp.MustCompile(`Chapter\s+(\d+)[:.\s]`),
			regexp.MustCompile(`Part\s+(\d+)[:.\s]`),
			regexp.MustCompile(`Title\s+(\d+)[:.\s]`),
			regexp.MustCompile(`الباب\s+(\d+)[:.\s]`),
			regexp.MustCompile(`الفصل\s+(\d+)[:.\s]`),
			regexp.MustCompile(`الجزء\s+(\d+)[:.\s]`),
			regexp.MustCompile(`العنوان\s+(\d+)[:.\s]`),
		},
	}
}

// ExtractArticles returns every article span found in text, ordered by
// position. Span content runs from the match start to the start of the next
// match in the pooled list, or to end of text for the last span, so the
// spans partition the text from the first match onward with no gaps.
func (a *DocumentStructureAnalyzer) ExtractArticles(text string) []models.StructureSpan {
	return extractSpans(text, a.articlePatterns, models.SpanTypeArticle)
}

// ExtractSections is the section counterpart of ExtractArticles, driven by
// the chapter/part/title grammar.
func (a *DocumentStructureAnalyzer) ExtractSections(text string) []models.StructureSpan {
	return extractSpans(text, a.sectionPatterns, models.SpanTypeSection)
}

type structureMatch struct {
	pos       int
	fullMatch string
	id        string
}

func extractSpans(text string, patterns []*regexp.Regexp, spanType string) []models.StructureSpan {
	var all []structureMatch
	for _, pattern := range patterns {
		for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
			all = append(all, structureMatch{
				pos:       loc[0],
				fullMatch: text[loc[0]:loc[1]],
				id:        text[loc[2]:loc[3]],
			})
		}
	}

	// Matches are pooled across all patterns and ordered by position alone;
	// pattern precedence plays no part in ordering.
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	spans := make([]models.StructureSpan, 0, len(all))
	for i, m := range all {
		end := len(text)
		if i < len(all)-1 {
			end = all[i+1].pos
		}
		spans = append(spans, models.StructureSpan{
			ID:        m.id,
			Type:      spanType,
			FullMatch: m.fullMatch,
			Content:   text[m.pos:end],
			Position:  m.pos,
		})
	}
	return spans
}

// FindArticleByNumber re-runs extraction and returns the article whose id
// equals articleNumber, or nil. Ids are compared as strings, exactly as
// written in the source; "07" and "7" are different articles.
func (a *DocumentStructureAnalyzer) FindArticleByNumber(text, articleNumber string) *models.StructureSpan {
	for _, article := range a.ExtractArticles(text) {
		if article.ID == articleNumber {
			return &article
		}
	}
	return nil
}

// FindSectionByNumber is the section counterpart of FindArticleByNumber.
func (a *DocumentStructureAnalyzer) FindSectionByNumber(text, sectionNumber string) *models.StructureSpan {
	for _, section := range a.ExtractSections(text) {
		if section.ID == sectionNumber {
			return &section
		}
	}
	return nil
}

// AnalyzeDocumentStructure runs both extractions over text and returns the
// aggregate used by the document loader. Malformed input never errors: text
// with no matches yields empty span lists.
func (a *DocumentStructureAnalyzer) AnalyzeDocumentStructure(text string) models.DocumentStructure {
	articles := a.ExtractArticles(text)
	sections := a.ExtractSections(text)
	return models.DocumentStructure{
		Articles:     articles,
		Sections:     sections,
		ArticleCount: len(articles),
		SectionCount: len(sections),
	}
}

var numberedLinePattern = regexp.MustCompile(`^\d+\.`)

// ExtractArticleTitle guesses a display title for an article span. It scans
// the second and third lines for the first non-empty line that is neither a
// parenthesised clause nor a numbered sub-item, and falls back to the first
// line, or a 50-character prefix when the content has no lines at all.
func (a *DocumentStructureAnalyzer) ExtractArticleTitle(articleContent string) string {
	lines := strings.Split(articleContent, "\n")
	if len(lines) > 1 {
		limit := 3
		if len(lines) < limit {
			limit = len(lines)
		}
		for _, line := range lines[1:limit] {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "(") && !numberedLinePattern.MatchString(line) {
				return line
			}
		}
	}
	if len(lines) > 0 {
		return lines[0]
	}
	runes := []rune(articleContent)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return articleContent
}
