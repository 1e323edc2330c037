package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/visper-inc/cartoondl/api/middleware"
	"github.com/visper-inc/cartoondl/cache"
	"github.com/visper-inc/cartoondl/extractor"
	"github.com/visper-inc/cartoondl/models"
	"github.com/visper-inc/cartoondl/scraper"
)

// Download returns a handler for GET /api/download.
//
// Orchestration flow:
//  1. Bind & validate the url query parameter against allowedPrefix.
//  2. Serve from cache when enabled and fresh.
//  3. Fetcher.Fetch      → decoded HTML
//  4. extractor.Extract  → fields with fallbacks applied
//  5. Respond 200 with the constant attribution fields.
func Download(f scraper.Fetcher, cc *cache.Cache, allowedPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := slog.With("request_id", middleware.RequestID(c))

		// ── 1. Parse request ────────────────────────────────────────
		var req models.DownloadRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeMissingURL, models.MsgMissingURL, err))
			return
		}
		if err := req.Validate(allowedPrefix); err != nil {
			log.Info("rejected download request", "url", req.URL, "error", err)
			respondError(c, err)
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		key := cache.Key(req.URL)
		if cached, hit := cc.Get(key); hit {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, cached)
			return
		}

		// ── 3. Fetch ────────────────────────────────────────────────
		log.Info("starting scrape", "url", req.URL)
		page, err := f.Fetch(c.Request.Context(), req.URL)
		if err != nil {
			attrs := []any{"url", req.URL, "stage", "fetch", "error", err}
			var se *scraper.StatusError
			if errors.As(err, &se) {
				attrs = append(attrs, "upstream_status", se.StatusCode)
			}
			log.Error("scrape failed", attrs...)
			respondError(c, models.NewScrapeError(models.ErrCodeScrapeFailed, models.MsgScrapeFailed, err))
			return
		}
		log.Debug("page fetched", "url", req.URL, "final_url", page.FinalURL, "bytes", len(page.HTML))

		// ── 4. Extract ──────────────────────────────────────────────
		fields, err := extractor.ExtractHTML(page.HTML)
		if err != nil {
			log.Error("scrape failed", "url", req.URL, "stage", "parse", "error", err)
			respondError(c, models.NewScrapeError(models.ErrCodeScrapeFailed, models.MsgScrapeFailed, err))
			return
		}
		if fields.DownloadSource == "" {
			log.Warn("no download link found", "url", req.URL)
		}

		// ── 5. Respond ──────────────────────────────────────────────
		resp := models.NewDownloadResponse(fields.Title, fields.Description, fields.Image, fields.Download)
		if cc != nil {
			cc.Set(key, resp)
			c.Header("X-Cache", "miss")
		}

		log.Info("scrape succeeded",
			"url", req.URL,
			"title", fields.Title,
			"download_source", fields.DownloadSource,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		c.JSON(http.StatusOK, resp)
	}
}

// MethodNotAllowed answers any non-GET method on a known route.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		respondError(c, models.NewScrapeError(models.ErrCodeMethodNotAllowed, models.MsgMethodNotAllowed, nil))
	}
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondError(c, models.NewScrapeError(models.ErrCodeNotFound, models.MsgNotFound, nil))
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// the {status:false, error} body.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, models.MsgScrapeFailed, err)
	}

	c.AbortWithStatusJSON(mapErrorToStatus(scrapeErr), scrapeErr.ToResponse())
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeMissingURL, models.ErrCodeInvalidDomain:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed // 405
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
