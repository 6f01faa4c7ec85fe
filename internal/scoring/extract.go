package scoring

import (
	"strings"
	"time"
)

// extractQueryInfo tokenizes a raw query string into the QueryInfo the
// scoring algorithms operate on: lowercase alphanumeric terms of at
// least two characters, quoted substrings captured separately as exact
// phrases, and a per-term weight map (default 1.0, per spec).
func extractQueryInfo(query string) QueryInfo {
	info := QueryInfo{
		TermWeights: map[string]float64{},
	}

	phrases, rest := extractQuotedPhrases(query)
	info.ExactPhrases = phrases

	for _, tok := range tokenize(rest) {
		if _, seen := info.TermWeights[tok]; !seen {
			info.Terms = append(info.Terms, tok)
		}
		info.TermWeights[tok] = 1.0
	}

	for _, phrase := range phrases {
		for _, tok := range tokenize(phrase) {
			if _, seen := info.TermWeights[tok]; !seen {
				info.Terms = append(info.Terms, tok)
			}
			info.TermWeights[tok] = 1.0
		}
	}

	return info
}

// extractQuotedPhrases pulls every "..." substring out of query,
// returning the phrases (without quotes) and the remaining text with
// the quoted segments removed.
func extractQuotedPhrases(query string) ([]string, string) {
	var phrases []string
	var rest strings.Builder

	inQuote := false
	var cur strings.Builder
	for _, r := range query {
		switch {
		case r == '"' && !inQuote:
			inQuote = true
			cur.Reset()
		case r == '"' && inQuote:
			inQuote = false
			phrases = append(phrases, cur.String())
		case inQuote:
			cur.WriteRune(r)
		default:
			rest.WriteRune(r)
		}
	}
	return phrases, rest.String()
}

// NewDocumentInfo builds a DocumentInfo from an index search-result
// row's raw fields, computing the term-frequency maps and field lengths
// the scoring algorithms need. keywordsField is the pipe-joined keywords
// string as stored in the full-text index.
func NewDocumentInfo(url, domain, title, description, content string, keywordsField string, baseScore float64) DocumentInfo {
	doc := DocumentInfo{
		URL:         url,
		Domain:      domain,
		Title:       title,
		Description: description,
		Content:     content,
		BaseScore:   baseScore,
	}
	if keywordsField != "" {
		doc.Keywords = strings.Split(keywordsField, "|")
	}

	doc.TitleTermFreq, doc.TitleLength = termFrequencies(title)
	doc.ContentTermFreq, doc.ContentLength = termFrequencies(content)
	doc.DescriptionTermFreq, doc.DescriptionLength = termFrequencies(description)

	return doc
}

// WithIndexedAt returns a copy of d with IndexedAt set, for the
// freshness boost.
func (d DocumentInfo) WithIndexedAt(t time.Time) DocumentInfo {
	d.IndexedAt = t
	return d
}
