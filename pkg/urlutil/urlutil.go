package urlutil

import "net/url"

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are preserved in source order (re-encoded, not reordered)
//   - An empty query (a bare "?") is removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Clean the path: remove trailing slashes (except root)
	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Query parameters stay, but go through percent-encoding canonicalization
	// via url.Values round-trip; net/url.Values.Encode sorts by key, which
	// would reorder params, so re-encode pair by pair to keep source order.
	if canonical.RawQuery != "" {
		canonical.RawQuery = canonicalizeQuery(canonical.RawQuery)
	}
	// A bare "?" with nothing after it is the same URL without one.
	if canonical.RawQuery == "" {
		canonical.ForceQuery = false
	}

	return canonical
}

// canonicalizeQuery re-encodes a raw query string, preserving the source
// order of its key=value pairs (unlike url.Values.Encode, which sorts by
// key). Malformed pairs are dropped rather than failing the whole URL.
func canonicalizeQuery(rawQuery string) string {
	pairs := splitQuery(rawQuery)
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, hasValue := cutFirst(pair, '=')
		k, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		encoded := url.QueryEscape(k)
		if hasValue {
			v, err := url.QueryUnescape(value)
			if err != nil {
				continue
			}
			encoded += "=" + url.QueryEscape(v)
		}
		out = append(out, encoded)
	}
	return joinAmp(out)
}

func splitQuery(raw string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '&' {
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	parts = append(parts, raw[start:])
	return parts
}

func cutFirst(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func joinAmp(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	total := len(parts) - 1
	for _, p := range parts {
		total += len(p)
	}
	b := make([]byte, 0, total)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '&')
		}
		b = append(b, p...)
	}
	return string(b)
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
