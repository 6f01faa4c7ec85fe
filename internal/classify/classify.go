// Package classify maps a fetch outcome (HTTP status, transport error,
// message) to a FailureType and decides whether and how long to wait
// before retrying. It holds no state: every function is pure given its
// config argument, mirroring the crawler's own ClassifiedError pattern
// one level up the stack.
package classify

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/config"
)

type FailureType int

const (
	Unknown FailureType = iota
	Temporary
	RateLimited
	Permanent
)

func (t FailureType) String() string {
	switch t {
	case Temporary:
		return "temporary"
	case RateLimited:
		return "rate_limited"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

var permanentHttpCodes = map[int]struct{}{
	400: {}, 401: {}, 403: {}, 404: {}, 405: {}, 406: {}, 407: {}, 409: {},
	410: {}, 411: {}, 412: {}, 413: {}, 414: {}, 415: {}, 416: {}, 417: {},
	418: {}, 421: {}, 422: {}, 423: {}, 424: {}, 426: {}, 428: {}, 431: {},
	451: {},
}

var permanentTransportCodes = map[string]struct{}{
	"unsupported_protocol": {},
	"malformed_url":        {},
	"dns_resolution_failed": {},
	"bad_function_argument": {},
}

// Classify maps an HTTP status code (0 if none was received), a transport
// error code (empty if none), and a free-form error message to a
// FailureType, per the source's precedence: rate limiting first, then
// permanent HTTP codes, then the retryable-code allowlist, then 5xx,
// then transport codes, then message pattern matching.
func Classify(httpCode int, transportCode string, message string, cfg config.Config) FailureType {
	if httpCode == 429 {
		return RateLimited
	}

	if httpCode > 0 {
		if _, ok := permanentHttpCodes[httpCode]; ok {
			return Permanent
		}
		if cfg.IsRetryableHttpCode(httpCode) {
			return Temporary
		}
		if httpCode >= 500 && httpCode < 600 {
			return Temporary
		}
	}

	if transportCode != "" {
		if _, ok := permanentTransportCodes[transportCode]; ok {
			return Permanent
		}
		if cfg.IsRetryableTransportCode(transportCode) {
			return Temporary
		}
	}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "name or service not known") ||
		strings.Contains(lower, "no such host is known") ||
		strings.Contains(lower, "nodename nor servname provided") {
		return Permanent
	}
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "connection") ||
		strings.Contains(lower, "network") {
		return Temporary
	}

	return Unknown
}

// ShouldRetry decides whether another attempt is warranted for the given
// classification, current retry count, and configured ceiling.
func ShouldRetry(failureType FailureType, retryCount, maxRetries int) bool {
	if failureType == Permanent {
		return false
	}
	if retryCount >= maxRetries {
		return false
	}
	if failureType == Temporary || failureType == RateLimited {
		return true
	}
	// Unknown: be conservative, only retry through the first half of the budget.
	return retryCount < maxRetries/2
}

// NextDelay computes the backoff delay before the given retry attempt.
// retryCount is 1-indexed (the attempt about to be made).
func NextDelay(retryCount int, cfg config.Config, failureType FailureType) time.Duration {
	base := cfg.BaseRetryDelay()
	if failureType == RateLimited {
		base = cfg.RateLimitDelay()
	}

	multiplier := math.Pow(cfg.BackoffMultiplier(), float64(retryCount-1))
	delay := time.Duration(float64(base) * multiplier)

	if maxDelay := cfg.MaxRetryDelay(); delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// ParseRetryAfter parses an HTTP Retry-After header value expressed as a
// number of seconds. Non-numeric (HTTP-date) values are not supported and
// yield ok=false; callers should fall back to the configured rate-limit delay.
func ParseRetryAfter(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
