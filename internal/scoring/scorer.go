package scoring

import (
	"sort"
	"time"
)

// Scorer ranks candidate documents against a query using a configured
// algorithm. It replaces the original's virtual ScoringAlgorithm
// hierarchy with a small tagged dispatch (see scoreByAlgorithm) per
// spec.md §9's design note, since Go has no class hierarchy to mirror.
type Scorer struct {
	cfg   Config
	stats *CorpusStats
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, stats: newCorpusStats()}
}

// UpdateCorpusStatistics refreshes the collection-wide statistics the
// BM25 and TF-IDF algorithms depend on. Callers invoke this after a bulk
// index operation, and optionally on a timer.
func (s *Scorer) UpdateCorpusStatistics(docs []DocumentInfo) {
	s.stats = updateCorpusStatistics(docs)
}

// Score computes one document's final score against query, applying the
// configured algorithm, exact-phrase boost, post-boosts, and (for the
// hybrid algorithm) base-score blending. now is the reference clock for
// the freshness boost; callers outside tests pass time.Now().
func (s *Scorer) Score(query string, d DocumentInfo, now time.Time) DocumentScore {
	q := extractQueryInfo(query)

	raw := s.scoreByAlgorithm(s.cfg.Algorithm, q, d)
	raw = applyExactPhraseBoost(s.cfg, q, d, raw)

	if s.cfg.Algorithm == AlgorithmHybrid && d.BaseScore > 0 {
		raw = 0.3*d.BaseScore + 0.7*raw
	}

	raw = applyPostBoosts(s.cfg, q, d, now, raw)

	matched, total := matchedTerms(q, d)
	cov := 0.0
	if total > 0 {
		cov = float64(matched) / float64(total)
	}

	return DocumentScore{
		URL:          d.URL,
		Score:        raw,
		Coverage:     cov,
		MatchedTerms: matched,
		TotalTerms:   total,
	}
}

func (s *Scorer) scoreByAlgorithm(algo Algorithm, q QueryInfo, d DocumentInfo) float64 {
	switch algo {
	case AlgorithmBM25:
		return scoreBM25(s.cfg, s.stats, q, d)
	case AlgorithmTFIDF:
		return scoreTFIDF(s.cfg, s.stats, q, d)
	case AlgorithmHybrid:
		inner := s.cfg.HybridInner
		if inner == "" {
			inner = AlgorithmBM25
		}
		return s.scoreByAlgorithm(inner, q, d)
	default:
		return scoreBM25(s.cfg, s.stats, q, d)
	}
}

// RankResults scores every document in docs against query, drops any
// whose total score falls below MinScore, optionally min-max normalizes
// the survivors into [0,1], sorts descending by score with a
// score-then-url tie-break, and truncates to topK.
func (s *Scorer) RankResults(query string, docs []DocumentInfo, topK int, now time.Time) []DocumentScore {
	scores := make([]DocumentScore, 0, len(docs))
	for _, d := range docs {
		sc := s.Score(query, d, now)
		if sc.Score < s.cfg.MinScore {
			continue
		}
		scores = append(scores, sc)
	}

	if s.cfg.NormalizeScores {
		normalize(scores)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].URL < scores[j].URL
	})

	if topK > 0 && len(scores) > topK {
		scores = scores[:topK]
	}
	return scores
}

func normalize(scores []DocumentScore) {
	if len(scores) == 0 {
		return
	}
	min, max := scores[0].Score, scores[0].Score
	for _, s := range scores {
		if s.Score < min {
			min = s.Score
		}
		if s.Score > max {
			max = s.Score
		}
	}
	if max == min {
		for i := range scores {
			scores[i].Score = 1
		}
		return
	}
	for i := range scores {
		scores[i].Score = (scores[i].Score - min) / (max - min)
	}
}
