package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/pkg/failure"
	"github.com/rohmanhakim/search-engine-core/pkg/retry"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Fetch Semantics

- Only successful HTML responses are processed
- Non-HTML content is discarded
- Redirect chains are bounded
- All responses are logged with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
) HtmlFetcher {
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
	}
}

func (h *HtmlFetcher) Init(httpClient *http.Client) {
	h.httpClient = httpClient
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchParam FetchParam,
	cfg config.Config,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	result, attempts, err := h.fetchWithRetry(ctx, fetchParam.fetchUrl, fetchParam.userAgent, cfg)

	duration := time.Since(startTime)

	// Record the fetch event with actual data; retryCount is the number
	// of attempts made, whether the fetch succeeded or not
	var statusCode int
	var contentType string
	retryCount := attempts

	if err == nil {
		statusCode = result.Code()
		contentType = h.extractContentType(result.Headers())
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		retryCount,
		crawlDepth,
	)

	if err != nil {
		// Use errors.Is to decide between FetchError or RetryError
		if errors.Is(err, &retry.RetryError{}) {
			// It's a RetryError
			h.recordRetryError(callerMethod, fetchParam.fetchUrl, err)
		} else {
			// It's a FetchError
			h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		}

		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) extractContentType(headers map[string]string) string {
	if ct, ok := headers["Content-Type"]; ok {
		return ct
	}
	return ""
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		// record fetch error event
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HtmlFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		// record retry error event
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

// fetchWithRetry drives performFetch through the same classify/retry
// decision the crawler's DomainManager bookkeeping uses: a failed
// attempt is classified via classify.Classify, classify.ShouldRetry
// decides whether another attempt is warranted, and classify.NextDelay
// (raised to the server's own Retry-After window, if any, on a 429)
// picks the wait before it. This mirrors spec.md §4.1/§4.7 far more
// closely than a generic exponential backoff would: a 404 gives up
// immediately, a message-pattern DNS failure gives up immediately, and
// config.RetryableHttpCodes/RetryableTransportCodes actually matter.
func (h *HtmlFetcher) fetchWithRetry(ctx context.Context, fetchUrl url.URL, userAgent string, cfg config.Config) (FetchResult, int, failure.ClassifiedError) {
	retryCount := 0
	for {
		result, fetchErr := h.performFetch(ctx, fetchUrl, userAgent)
		if fetchErr == nil {
			return result, retryCount + 1, nil
		}
		fetchErr.Attempts = retryCount + 1

		failureType := classify.Classify(fetchErr.HTTPStatusCode, fetchErr.TransportCode, fetchErr.Message, cfg)
		if fetchErr.Cause == ErrCauseContentTypeInvalid || fetchErr.Cause == ErrCauseRedirectLimitExceeded {
			// Neither outcome is modeled by classify's HTTP/transport
			// vocabulary; retrying won't change a page's content type or
			// break a redirect loop, so both are terminal regardless of
			// what classify.Classify would otherwise infer from the
			// status code alone.
			failureType = classify.Permanent
		}
		fetchErr.Retryable = failureType != classify.Permanent

		if !classify.ShouldRetry(failureType, retryCount, cfg.MaxRetries()) {
			if failureType == classify.Permanent {
				return FetchResult{}, fetchErr.Attempts, fetchErr
			}
			return FetchResult{}, fetchErr.Attempts, &retry.RetryError{
				Message:   fmt.Sprintf("exhausted %d attempts, last error: %v", fetchErr.Attempts, fetchErr),
				Cause:     retry.ErrExhaustedAttempts,
				Retryable: true,
			}
		}

		retryCount++
		delay := classify.NextDelay(retryCount, cfg, failureType)
		if failureType == classify.RateLimited && fetchErr.RetryAfter > delay {
			delay = fetchErr.RetryAfter
		}

		select {
		case <-ctx.Done():
			return FetchResult{}, fetchErr.Attempts, fetchErr
		case <-time.After(delay):
		}
	}
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:       fmt.Sprintf("failed to create request: %v", err),
			Cause:         ErrCauseNetworkFailure,
			TransportCode: "malformed_url",
		}
	}

	// Apply browser-like headers
	headers := requestHeaders(userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		message, transportCode := describeTransportFailure(err)
		return FetchResult{}, &FetchError{
			Message:       message,
			Cause:         ErrCauseNetworkFailure,
			TransportCode: transportCode,
		}
	}
	defer resp.Body.Close()

	// Handle HTTP status codes. Retryability is no longer decided here;
	// fetchWithRetry derives it from classify.Classify over the status
	// code, transport code, and message this branch records.
	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{
			Message:        fmt.Sprintf("server error: %d", resp.StatusCode),
			Cause:          ErrCauseRequest5xx,
			HTTPStatusCode: resp.StatusCode,
		}

	case resp.StatusCode == 429:
		retryAfter, _ := classify.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return FetchResult{}, &FetchError{
			Message:        "rate limited (429)",
			Cause:          ErrCauseRequestTooMany,
			HTTPStatusCode: resp.StatusCode,
			RetryAfter:     retryAfter,
		}

	case resp.StatusCode == 403:
		return FetchResult{}, &FetchError{
			Message:        "access forbidden (403)",
			Cause:          ErrCauseRequestPageForbidden,
			HTTPStatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return FetchResult{}, &FetchError{
			Message:        fmt.Sprintf("client error: %d", resp.StatusCode),
			Cause:          ErrCauseRequestPageForbidden,
			HTTPStatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// Redirects should be handled by http.Client, but if we get here,
		// it means redirect limit exceeded
		return FetchResult{}, &FetchError{
			Message:        fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Cause:          ErrCauseRedirectLimitExceeded,
			HTTPStatusCode: resp.StatusCode,
		}
	}

	// Check Content-Type for HTML
	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContent(contentType) {
		return FetchResult{}, &FetchError{
			Message:        fmt.Sprintf("non-HTML content type: %s", contentType),
			Cause:          ErrCauseContentTypeInvalid,
			HTTPStatusCode: resp.StatusCode,
		}
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:        fmt.Sprintf("failed to read response body: %v", err),
			Cause:          ErrCauseReadResponseBodyError,
			HTTPStatusCode: resp.StatusCode,
		}
	}

	// Build response headers map
	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	// Create FetchResult
	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}

	return result, nil
}

func isHTMLContent(contentType string) bool {
	// Check if content type is HTML
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

// describeTransportFailure turns a transport-level error from
// http.Client.Do into a message and coarse transport code classify.Classify
// understands: an unresolvable host becomes "dns_resolution_failed" with
// a message containing classify's "no such host is known" phrase, a
// client-side deadline becomes "timeout" with the "timeout" keyword
// present regardless of how the runtime worded it, and anything else
// falls back to the raw error text for classify's "connection"/"network"
// message patterns to match against.
func describeTransportFailure(err error) (message string, transportCode string) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return fmt.Sprintf("dns resolution failed: no such host is known (%v)", err), "dns_resolution_failed"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("request timeout: %v", err), "timeout"
	}

	return fmt.Sprintf("request failed: %v", err), ""
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate, br",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
