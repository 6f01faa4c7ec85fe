// Package scoring implements the Scorer (C11): pluggable BM25 / TF-IDF /
// hybrid document scoring against a parsed query, with configurable
// field weights, boost factors, and score normalization. Grounded on
// original_source/include/search_engine/scoring/SearchScorer.h and
// spec.md §4.10 (the BM25 formulas, which is where the .h's
// corresponding .cpp was filtered from the retrieval pack).
package scoring

// FieldWeights controls how much each field contributes to a document's
// score.
type FieldWeights struct {
	Title       float64
	Description float64
	Content     float64
	Keywords    float64
	URL         float64
	Domain      float64
}

func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		Title:       5.0,
		Description: 3.0,
		Content:     1.0,
		Keywords:    4.0,
		URL:         0.5,
		Domain:      0.8,
	}
}

// TFParams configures term-frequency normalization for the TF-IDF
// algorithm; BM25 does not read it.
type TFParams struct {
	UseLogNormalization bool
	MaxTermFrequency    float64
	NormalizeByLength   bool
}

func DefaultTFParams() TFParams {
	return TFParams{
		UseLogNormalization: true,
		MaxTermFrequency:    10.0,
		NormalizeByLength:   true,
	}
}

// BM25Params are the two classic BM25 tuning knobs.
type BM25Params struct {
	K1 float64
	B  float64
}

func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.2, B: 0.75}
}

// BoostFactors are the post-processing boosts. ExactMatchBoost is added
// (scaled by the matching field's weight); the other three multiply the
// score.
type BoostFactors struct {
	ExactMatchBoost     float64
	TitleMatchBoost     float64
	DomainAuthorityBoost float64
	FreshnessBoost      float64
}

func DefaultBoostFactors() BoostFactors {
	return BoostFactors{
		ExactMatchBoost:      2.0,
		TitleMatchBoost:      1.5,
		DomainAuthorityBoost: 1.2,
		FreshnessBoost:       1.1,
	}
}

// Algorithm selects which scoring strategy Score uses. Hybrid blends the
// index's own base score with an inner algorithm's score, mirroring the
// original's RedisSearchCombinedAlgorithm decorator.
type Algorithm string

const (
	AlgorithmBM25   Algorithm = "bm25"
	AlgorithmTFIDF  Algorithm = "tfidf"
	AlgorithmHybrid Algorithm = "hybrid"
)

// Config is the full tunable surface of the Scorer.
type Config struct {
	Algorithm    Algorithm
	HybridInner  Algorithm // used only when Algorithm == AlgorithmHybrid; defaults to BM25
	FieldWeights FieldWeights
	TFParams     TFParams
	BM25Params   BM25Params
	BoostFactors BoostFactors

	// AuthoritativeDomains is the allow-list the domain-authority boost
	// checks against.
	AuthoritativeDomains map[string]struct{}
	// FreshnessWindowHours is how recently, in hours, IndexedAt must fall
	// for the freshness boost to apply.
	FreshnessWindowHours float64

	MinScore        float64
	NormalizeScores bool
}

func DefaultConfig() Config {
	return Config{
		Algorithm:             AlgorithmHybrid,
		HybridInner:           AlgorithmBM25,
		FieldWeights:          DefaultFieldWeights(),
		TFParams:              DefaultTFParams(),
		BM25Params:            DefaultBM25Params(),
		BoostFactors:          DefaultBoostFactors(),
		AuthoritativeDomains:  map[string]struct{}{},
		FreshnessWindowHours:  24 * 7,
		MinScore:              0.01,
		NormalizeScores:       true,
	}
}

func (c Config) fieldWeight(field string) float64 {
	switch field {
	case "title":
		return c.FieldWeights.Title
	case "description":
		return c.FieldWeights.Description
	case "content":
		return c.FieldWeights.Content
	case "keywords":
		return c.FieldWeights.Keywords
	case "url":
		return c.FieldWeights.URL
	case "domain":
		return c.FieldWeights.Domain
	default:
		return 1.0
	}
}
