package crawler

import (
	"net/url"

	"github.com/rohmanhakim/search-engine-core/internal/config"
)

func newTestConfig(seedUrls []url.URL, allowedPathPrefix []string) (config.Config, error) {
	builder := config.WithDefault(seedUrls)
	if allowedPathPrefix != nil {
		builder = builder.WithAllowedPathPrefix(allowedPathPrefix)
	}
	return builder.Build()
}
