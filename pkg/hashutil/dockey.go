package hashutil

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// DocKey derives the full-text index key for a URL: a fixed prefix followed
// by a 64-bit, non-cryptographic, platform-independent hash of the URL.
// Pinning the hash (rather than a language-default string hash) keeps keys
// stable across processes and restarts.
func DocKey(prefix, url string) string {
	return prefix + strconv.FormatUint(xxhash.Sum64String(url), 16)
}
