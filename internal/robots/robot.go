package robots

/*
Responsibilities

- Fetch robots.txt per host (via RobotsFetcher)
- Cache rules for crawl duration (via cache.Cache)
- Enforce allow/disallow rules before enqueue

Robots checks occur before a URL enters the frontier.
*/

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/robots/cache"
)

// CachedRobot is the Robots Policy (C5) a Crawler consults before a URL
// enters the frontier: Decide fetches (and caches) the target host's robots.txt, then
// evaluates the configured user agent's rules against the URL's path.
type CachedRobot struct {
	sink      metadata.MetadataSink
	userAgent string
	fetcher   *RobotsFetcher
	cache     cache.Cache
}

// NewCachedRobot builds an unconfigured CachedRobot. Call Init or
// InitWithCache before Decide.
func NewCachedRobot(sink metadata.MetadataSink) CachedRobot {
	return CachedRobot{sink: sink}
}

// Init configures the robot with an in-memory cache, sized for one crawl
// session's worth of distinct hosts.
func (r *CachedRobot) Init(userAgent string) {
	r.InitWithCache(userAgent, cache.NewMemoryCache())
}

// InitWithCache configures the robot with a caller-supplied cache
// implementation, e.g. to share robots.txt results across sessions.
func (r *CachedRobot) InitWithCache(userAgent string, c cache.Cache) {
	r.userAgent = userAgent
	r.cache = c
	r.fetcher = NewRobotsFetcher(r.sink, userAgent, c)
}

// Decide fetches target's host robots.txt (cached per host for the
// session) and evaluates it against target's path for the configured
// user agent. A fetch failure is recorded to the metadata sink and
// returned as an error; callers should treat that as a retryable
// condition per the classifier, not as a disallow.
func (r *CachedRobot) Decide(target url.URL) (Decision, *RobotsError) {
	scheme := target.Scheme
	if scheme == "" {
		scheme = "http"
	}

	result, err := r.fetcher.Fetch(context.Background(), scheme, target.Host)
	if err != nil {
		r.sink.RecordError(
			time.Now(),
			"robots",
			"CachedRobot.Decide",
			mapRobotsErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, target.String())},
		)
		return Decision{}, err
	}

	rs := MapResponseToRuleSet(result.Response, r.userAgent, result.FetchedAt)

	path := target.Path
	if path == "" {
		path = "/"
	}
	allowed, reason := rs.evaluatePath(path)

	decision := Decision{
		Url:     target,
		Allowed: allowed,
		Reason:  reason,
	}
	if delay := rs.CrawlDelay(); delay != nil {
		decision.CrawlDelay = *delay
	}
	return decision, nil
}

// evaluatePath applies the standard robots.txt precedence: among every
// allow/disallow pattern matching path, the longest pattern wins; ties
// are resolved in favor of Allow (the least-restrictive outcome).
func (r ruleSet) evaluatePath(path string) (bool, DecisionReason) {
	if !r.hasGroups {
		return true, EmptyRuleSet
	}
	if !r.matchedGroup {
		return true, UserAgentNotMatched
	}

	found := false
	bestLen := -1
	bestAllow := false

	consider := func(pattern string, isAllow bool) {
		if !patternMatches(pattern, path) {
			return
		}
		found = true
		length := len(pattern)
		if length > bestLen || (length == bestLen && isAllow) {
			bestLen = length
			bestAllow = isAllow
		}
	}
	for _, pr := range r.allowRules {
		consider(pr.prefix, true)
	}
	for _, pr := range r.disallowRules {
		consider(pr.prefix, false)
	}

	if !found {
		return true, NoMatchingRules
	}
	if bestAllow {
		return true, AllowedByRobots
	}
	return false, DisallowedByRobots
}

// patternMatches reports whether a robots.txt path pattern (which may use
// "*" as a multi-character wildcard and a trailing "$" as an end-of-path
// anchor) matches path. Everything else in the pattern is matched
// literally.
func patternMatches(pattern, path string) bool {
	return compilePattern(pattern).MatchString(path)
}

func compilePattern(pattern string) *regexp.Regexp {
	anchored := strings.HasSuffix(pattern, "$")
	body := strings.TrimSuffix(pattern, "$")

	segments := strings.Split(body, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}
	expr := "^" + strings.Join(segments, ".*")
	if anchored {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return regexp.MustCompile(`^\x00never-matches\x00$`)
	}
	return re
}
