package scoring

import "strings"

// updateCorpusStatistics rebuilds the CorpusStats snapshot used by BM25
// and TF-IDF from the current set of indexed documents. Callers refresh
// it after a bulk index operation and, optionally, on a timer (per
// SPEC_FULL's Open Question decision).
func updateCorpusStatistics(docs []DocumentInfo) *CorpusStats {
	stats := newCorpusStats()
	stats.DocumentCount = len(docs)
	if len(docs) == 0 {
		return stats
	}

	var titleLenSum, contentLenSum, descLenSum int

	for _, d := range docs {
		titleLenSum += d.TitleLength
		contentLenSum += d.ContentLength
		descLenSum += d.DescriptionLength

		markSeen(stats.DocFreq["title"], d.TitleTermFreq)
		markSeen(stats.DocFreq["content"], d.ContentTermFreq)
		markSeen(stats.DocFreq["description"], d.DescriptionTermFreq)
	}

	n := float64(len(docs))
	stats.AvgFieldLength["title"] = float64(titleLenSum) / n
	stats.AvgFieldLength["content"] = float64(contentLenSum) / n
	stats.AvgFieldLength["description"] = float64(descLenSum) / n

	return stats
}

func markSeen(docFreq map[string]int, termFreq map[string]int) {
	for term := range termFreq {
		docFreq[term]++
	}
}

// termFrequencies tokenizes text the same way extractQueryInfo does and
// returns a term -> count map plus the token count (the field's length
// for BM25/TF-IDF length normalization).
func termFrequencies(text string) (map[string]int, int) {
	freq := map[string]int{}
	length := 0
	for _, tok := range tokenize(text) {
		freq[tok]++
		length++
	}
	return freq, length
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() >= 2 {
			tokens = append(tokens, sb.String())
		}
		sb.Reset()
	}
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
