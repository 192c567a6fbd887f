package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkenzhe/curator/app/access"
	"github.com/dkenzhe/curator/app/cache"
	"github.com/dkenzhe/curator/app/database"
	"github.com/dkenzhe/curator/app/filters"
	"github.com/dkenzhe/curator/app/recommend"
)

func NewHandler(normalizer *filters.Normalizer, resultCache *cache.Cache,
	pipeline PipelineInterface, local LocalCatalogInterface,
	contentRepo database.ContentRepository, accessService AccessInterface,
	accessRequired bool) *Handler {
	return &Handler{
		normalizer:     normalizer,
		resultCache:    resultCache,
		pipeline:       pipeline,
		local:          local,
		contentRepo:    contentRepo,
		accessService:  accessService,
		accessRequired: accessRequired,
	}
}

// Recommend serves the generator-backed recommendation flow. Responses are
// cached per kind, normalized filter set and locale.
func (h *Handler) Recommend(c *gin.Context) {
	kind, ok := recommend.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown content type. Available: books, movies, music"})
		return
	}

	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	locale := filters.ResolveLocale(req.Lang)
	cf := h.normalizer.NormalizeSet(req.Filters)

	key := cache.Key(kind, cf.Fingerprint(), locale)
	if records, ok := h.resultCache.Get(key); ok {
		slog.Debug("Cache hit", "kind", kind, "lang", locale)
		c.JSON(http.StatusOK, gin.H{"recommendations": records, "cached": true})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), kind, cf, locale)
	if err != nil {
		slog.Error("Recommendation pipeline failed", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if result.NothingFound {
		c.JSON(http.StatusOK, gin.H{
			"recommendations": []recommend.Recommendation{},
			"message":         "No content found for these filters",
		})
		return
	}

	h.resultCache.Set(key, result.Records)

	c.JSON(http.StatusOK, gin.H{
		"recommendations": result.Records,
		"cached":          false,
		"count":           len(result.Records),
		"lang":            locale,
		"source":          result.Provenance,
	})
}

// RecommendLocal serves recommendations from the harvested content store.
// Never cached: the exclusion set varies per request.
func (h *Handler) RecommendLocal(c *gin.Context) {
	kind, ok := recommend.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// The local store targets a Russian-speaking audience first
	locale := "ru"
	if req.Lang != "" {
		locale = filters.ResolveLocale(req.Lang)
	}
	cf := h.normalizer.NormalizeSet(req.Filters)

	result, err := h.local.Recommend(kind, cf, req.ExcludeIDs, locale)
	if err != nil {
		slog.Error("Local recommendation failed", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if result.NothingFound {
		c.JSON(http.StatusOK, gin.H{
			"recommendations": []recommend.Recommendation{},
			"message":         "No content found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": result.Records,
		"count":           len(result.Records),
		"lang":            locale,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.contentRepo.GetContentCount(); err == nil {
		health["content_items"] = count
	}

	health["cache_entries"] = h.resultCache.Stats().Size

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.contentRepo.GetContentCount()
	if err != nil {
		slog.Error("Database error", "operation", "content_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	byType, err := h.contentRepo.GetContentCountByType()
	if err != nil {
		slog.Error("Database error", "operation", "content_count_by_type", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "byType": byType})
}

func (h *Handler) APIGetCacheStats(c *gin.Context) {
	stats := h.resultCache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"size":       stats.Size,
		"max_size":   stats.MaxSize,
		"total_hits": stats.TotalHits,
		"expired":    stats.ExpiredCount,
		"hit_rate":   stats.HitRate,
	})
}

func (h *Handler) APIClearCache(c *gin.Context) {
	h.resultCache.Clear()
	slog.Info("Result cache cleared via API")
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

func (h *Handler) AccessVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Code required"})
		return
	}

	grant, err := h.accessService.Verify(req.Code, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, access.ErrCodeNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Code not found"})
		case errors.Is(err, access.ErrCodeExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Code expired"})
		case errors.Is(err, access.ErrCodeExhausted):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Activation limit reached"})
		default:
			slog.Error("Access verification failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"sessionToken":         grant.SessionToken,
		"expiresAt":            grant.ExpiresAt.Format(time.RFC3339),
		"codeType":             grant.CodeType,
		"remainingActivations": grant.RemainingActivations,
	})
}

func (h *Handler) AccessStatus(c *gin.Context) {
	token := c.GetHeader("X-Session-Token")

	ok, err := h.accessService.Validate(token)
	if err != nil {
		slog.Error("Session validation failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": ok})
}

// sessionMiddleware gates recommendation endpoints behind an active session
// when access control is enabled.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.accessRequired {
			c.Next()
			return
		}

		ok, err := h.accessService.Validate(c.GetHeader("X-Session-Token"))
		if err != nil {
			slog.Error("Session validation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
