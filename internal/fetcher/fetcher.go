package fetcher

import (
	"context"
	"net/http"

	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/pkg/failure"
)

type Fetcher interface {
	Init(httpClient *http.Client)
	Fetch(
		ctx context.Context,
		crawlDepth int,
		fetchParam FetchParam,
		cfg config.Config,
	) (FetchResult, failure.ClassifiedError)
}
