package scoring

import "math"

// scoreTFIDF sums a classic TF-IDF score across the query's terms and
// the title/content/description fields, honoring the log-normalization
// and length-normalization knobs in TFParams.
func scoreTFIDF(cfg Config, stats *CorpusStats, q QueryInfo, d DocumentInfo) float64 {
	var total float64
	for _, field := range []string{"title", "content", "description"} {
		freq, length := fieldTermFreq(d, field)
		weight := cfg.fieldWeight(field)

		for _, term := range q.Terms {
			tf := float64(freq[term])
			if tf == 0 {
				continue
			}

			var tfPrime float64
			if cfg.TFParams.UseLogNormalization {
				capped := math.Min(tf, cfg.TFParams.MaxTermFrequency)
				tfPrime = math.Log(1 + capped)
			} else {
				tfPrime = tf
			}
			if cfg.TFParams.NormalizeByLength && length > 0 {
				tfPrime /= float64(length)
			}

			df := stats.docFreq(field, term)
			n := float64(stats.documentCount())
			idf := math.Log(n / math.Max(float64(df), 1))

			total += tfPrime * idf * weight * q.TermWeights[term]
		}
	}
	return total
}
