package storage

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords is the small, common-English set filtered out before
// frequency-ranking keyword candidates. Not exhaustive by design: this
// is a heuristic signal for the index, not a linguistic pipeline.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "by": true,
	"for": true, "with": true, "about": true, "as": true, "into": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"you": true, "your": true, "we": true, "our": true, "they": true, "their": true,
	"he": true, "she": true, "his": true, "her": true, "i": true, "me": true,
	"not": true, "no": true, "so": true, "if": true, "then": true, "than": true,
	"from": true, "up": true, "out": true, "can": true, "will": true, "just": true,
	"do": true, "does": true, "did": true, "have": true, "has": true, "had": true,
}

// extractKeywords tokenizes text, drops stopwords and single-letter
// tokens, ranks the remainder by frequency, and returns the top n.
func extractKeywords(text string, n int) []string {
	freq := map[string]int{}
	var order []string

	for _, tok := range tokenizeWords(text) {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		if _, seen := freq[tok]; !seen {
			order = append(order, tok)
		}
		freq[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

func tokenizeWords(text string) []string {
	lower := strings.ToLower(text)
	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
		}
		sb.Reset()
	}
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
