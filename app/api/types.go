package api

import (
	"context"

	"github.com/dkenzhe/curator/app/access"
	"github.com/dkenzhe/curator/app/cache"
	"github.com/dkenzhe/curator/app/database"
	"github.com/dkenzhe/curator/app/filters"
	"github.com/dkenzhe/curator/app/recommend"
)

type PipelineInterface interface {
	Run(ctx context.Context, kind recommend.Kind, cf filters.CanonicalFilters, locale string) (recommend.Result, error)
}

var _ PipelineInterface = (*recommend.Pipeline)(nil)

type LocalCatalogInterface interface {
	Recommend(kind recommend.Kind, cf filters.CanonicalFilters, excludeIDs []int64, locale string) (recommend.Result, error)
}

var _ LocalCatalogInterface = (*recommend.LocalCatalog)(nil)

type AccessInterface interface {
	Verify(code, ip, userAgent string) (*access.Grant, error)
	Validate(token string) (bool, error)
}

var _ AccessInterface = (*access.Service)(nil)

type Handler struct {
	normalizer     *filters.Normalizer
	resultCache    *cache.Cache
	pipeline       PipelineInterface
	local          LocalCatalogInterface
	contentRepo    database.ContentRepository
	accessService  AccessInterface
	accessRequired bool
}

type recommendationRequest struct {
	Filters    map[string]string `json:"filters"`
	Lang       string            `json:"lang"`
	ExcludeIDs []int64           `json:"excludeIds"`
}

type verifyRequest struct {
	Code string `json:"code"`
}
