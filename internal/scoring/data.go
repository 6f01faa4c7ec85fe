package scoring

import "time"

// QueryInfo is the parsed, analyzed form of a search query ready for
// scoring. Built by extractQueryInfo.
type QueryInfo struct {
	Terms         []string
	TermWeights   map[string]float64
	ExactPhrases  []string
}

// DocumentInfo is one candidate document pulled from an index row,
// ready for scoring against a QueryInfo.
type DocumentInfo struct {
	URL         string
	Domain      string
	Title       string
	Description string
	Content     string
	Keywords    []string
	BaseScore   float64
	IndexedAt   time.Time

	TitleTermFreq       map[string]int
	ContentTermFreq     map[string]int
	DescriptionTermFreq map[string]int

	TitleLength       int
	ContentLength     int
	DescriptionLength int
}

// DocumentScore is the scored outcome for one document.
type DocumentScore struct {
	URL          string
	Score        float64
	Coverage     float64
	MatchedTerms int
	TotalTerms   int
}

// CorpusStats is the snapshot of collection-wide statistics BM25 and
// TF-IDF need: document count, per-field document frequency, and
// per-field average length. Refreshed via updateCorpusStatistics.
type CorpusStats struct {
	DocumentCount int

	DocFreq map[string]map[string]int // field -> term -> document frequency

	AvgFieldLength map[string]float64 // field -> average length across the corpus
}

func newCorpusStats() *CorpusStats {
	return &CorpusStats{
		DocFreq:        map[string]map[string]int{"title": {}, "content": {}, "description": {}},
		AvgFieldLength: map[string]float64{"title": 0, "content": 0, "description": 0},
	}
}

func (c *CorpusStats) docFreq(field, term string) int {
	if c == nil {
		return 0
	}
	if m, ok := c.DocFreq[field]; ok {
		return m[term]
	}
	return 0
}

func (c *CorpusStats) avgFieldLength(field string) float64 {
	if c == nil {
		return 1
	}
	if v, ok := c.AvgFieldLength[field]; ok && v > 0 {
		return v
	}
	return 1
}

func (c *CorpusStats) documentCount() int {
	if c == nil || c.DocumentCount == 0 {
		return 1
	}
	return c.DocumentCount
}
