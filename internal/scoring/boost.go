package scoring

import (
	"strings"
	"time"
)

// applyExactPhraseBoost adds exactMatchBoost · fieldWeight for every
// quoted phrase in q that occurs verbatim in the document's title or
// content.
func applyExactPhraseBoost(cfg Config, q QueryInfo, d DocumentInfo, score float64) float64 {
	if len(q.ExactPhrases) == 0 {
		return score
	}
	title := strings.ToLower(d.Title)
	content := strings.ToLower(d.Content)
	for _, phrase := range q.ExactPhrases {
		p := strings.ToLower(phrase)
		if p == "" {
			continue
		}
		if strings.Contains(title, p) {
			score += cfg.BoostFactors.ExactMatchBoost * cfg.fieldWeight("title")
		}
		if strings.Contains(content, p) {
			score += cfg.BoostFactors.ExactMatchBoost * cfg.fieldWeight("content")
		}
	}
	return score
}

// applyPostBoosts applies the title-match, domain-authority, and
// freshness multiplicative boosts, in that order.
func applyPostBoosts(cfg Config, q QueryInfo, d DocumentInfo, now time.Time, score float64) float64 {
	if anyTermInTitle(q, d) {
		score *= cfg.BoostFactors.TitleMatchBoost
	}
	if _, ok := cfg.AuthoritativeDomains[d.Domain]; ok {
		score *= cfg.BoostFactors.DomainAuthorityBoost
	}
	if isFresh(d.IndexedAt, now, cfg.FreshnessWindowHours) {
		score *= cfg.BoostFactors.FreshnessBoost
	}
	return score
}

func anyTermInTitle(q QueryInfo, d DocumentInfo) bool {
	for _, term := range q.Terms {
		if d.TitleTermFreq[term] > 0 {
			return true
		}
	}
	return false
}

func isFresh(indexedAt, now time.Time, windowHours float64) bool {
	if indexedAt.IsZero() || windowHours <= 0 {
		return false
	}
	age := now.Sub(indexedAt).Hours()
	return age >= 0 && age <= windowHours
}

// coverage returns matchedTerms / totalTerms for d against q's terms.
func coverage(q QueryInfo, d DocumentInfo) float64 {
	matched, total := matchedTerms(q, d)
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// matchedTerms returns the count of q's terms present in any of d's
// scored fields, and the total term count.
func matchedTerms(q QueryInfo, d DocumentInfo) (matched, total int) {
	total = len(q.Terms)
	for _, term := range q.Terms {
		if d.TitleTermFreq[term] > 0 || d.ContentTermFreq[term] > 0 || d.DescriptionTermFreq[term] > 0 {
			matched++
		}
	}
	return matched, total
}
