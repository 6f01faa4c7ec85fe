package scoring

import "math"

// scoreBM25 sums the classic BM25 per-term-per-field score across the
// query's terms and the title/content/description fields.
func scoreBM25(cfg Config, stats *CorpusStats, q QueryInfo, d DocumentInfo) float64 {
	var total float64
	for _, field := range []string{"title", "content", "description"} {
		freq, length := fieldTermFreq(d, field)
		avgLen := stats.avgFieldLength(field)
		weight := cfg.fieldWeight(field)

		for _, term := range q.Terms {
			tf := float64(freq[term])
			if tf == 0 {
				continue
			}
			df := stats.docFreq(field, term)
			n := float64(stats.documentCount())

			idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
			if idf < 0 {
				idf = 0
			}

			ndl := 1.0
			if avgLen > 0 {
				ndl = float64(length) / avgLen
			}
			k1 := cfg.BM25Params.K1
			b := cfg.BM25Params.B
			tfN := (tf * (k1 + 1)) / (tf + k1*(1-b+b*ndl))

			total += idf * tfN * weight * q.TermWeights[term]
		}
	}
	return total
}

func fieldTermFreq(d DocumentInfo, field string) (map[string]int, int) {
	switch field {
	case "title":
		return d.TitleTermFreq, d.TitleLength
	case "description":
		return d.DescriptionTermFreq, d.DescriptionLength
	default:
		return d.ContentTermFreq, d.ContentLength
	}
}
