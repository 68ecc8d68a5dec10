package api

import (
	"encoding/json"
	"net/http"
	"time"

	models "Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
	icache "Resona/internal/service/cache"
	"Resona/internal/service/metrics"
	"Resona/internal/service/ratelimit"
	"Resona/internal/usecase"
	pkgcache "Resona/pkg/cache"
	xhttp "Resona/pkg/http"
	xlogger "Resona/pkg/logger"

	"github.com/labstack/echo/v4"
)

// InsightsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type InsightsEchoHandler struct {
	logger   *xlogger.Logger
	insights *usecase.InsightsUseCase
	matches  *usecase.MatchesUseCase
	rec      *usecase.MatchRecorder
	focus    *usecase.FocusSource

	digestCache pkgcache.Service
	respCache   icache.BytesCache
	rl          *ratelimit.Limiter
}

func NewInsightsEchoHandler(
	logger *xlogger.Logger,
	insights *usecase.InsightsUseCase,
	matches *usecase.MatchesUseCase,
	rec *usecase.MatchRecorder,
	focus *usecase.FocusSource,
) *InsightsEchoHandler {
	metrics.Register()
	return &InsightsEchoHandler{
		logger:   logger,
		insights: insights,
		matches:  matches,
		rec:      rec,
		focus:    focus,
		rl:       ratelimit.New(),
	}
}

// SetDigestCache injects the cache the digest worker writes to.
func (h *InsightsEchoHandler) SetDigestCache(c pkgcache.Service) { h.digestCache = c }

// SetResponseCache injects a short-TTL cache for rendered responses.
func (h *InsightsEchoHandler) SetResponseCache(c icache.BytesCache) { h.respCache = c }

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/insights/summary", h.Summary)
	g.GET("/insights/histogram", h.Histogram)
	g.GET("/insights/digest", h.Digest)
	g.GET("/matches", h.Matches)
	g.POST("/matches", h.RecordMatch)
	g.GET("/focus", h.Focus)
	g.PUT("/focus", h.SetFocus)
}

func (h *InsightsEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	endpoint := "summary"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if b, ok := h.cachedResponse(endpoint, "summary:v1"); ok {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, b)
	}

	res, err := h.insights.Summary(c.Request().Context())
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respondAndCache(c, endpoint, "summary:v1", res, 15*time.Second)
}

func (h *InsightsEchoHandler) Histogram(c echo.Context) error {
	start := time.Now()
	endpoint := "histogram"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HistogramRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	w := domrepo.NormalizeWindow(req.Window)

	if !h.rl.Allow(c.RealIP()+":histogram", 5, 2) {
		h.logger.Warn("histogram rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := "histogram:" + string(w)
	if b, ok := h.cachedResponse(endpoint, cacheKey); ok {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, b)
	}

	res, err := h.insights.HistogramView(c.Request().Context(), w)
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("histogram usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respondAndCache(c, endpoint, cacheKey, res, 15*time.Second)
}

// Digest serves the last digest computed by the background worker. When the
// cache has nothing yet it falls back to a live summary.
func (h *InsightsEchoHandler) Digest(c echo.Context) error {
	start := time.Now()
	endpoint := "digest"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.digestCache != nil {
		var raw string
		if err := h.digestCache.Get(c.Request().Context(), usecase.DigestCacheKey, &raw); err == nil && raw != "" {
			var s models.InsightSummary
			uerr := json.Unmarshal([]byte(raw), &s)
			if uerr == nil {
				return xhttp.SuccessResponse(c, &s)
			}
			h.logger.Warn("digest cache payload unreadable", xlogger.Error(uerr))
		}
	}

	res, err := h.insights.Summary(c.Request().Context())
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("digest fallback error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Matches(c echo.Context) error {
	start := time.Now()
	endpoint := "matches"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.MatchesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now.AddDate(0, 0, -30))
	to := xhttp.ParseTimeDefault(req.To, now)

	res, err := h.matches.GetMatches(c.Request().Context(), usecase.GetMatchesParams{
		From:  from,
		To:    to,
		Limit: req.Limit,
	})
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("matches usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) RecordMatch(c echo.Context) error {
	endpoint := "record_match"
	req := &models.RecordMatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ts := time.Now()
	if req.Timestamp > 0 {
		ts = time.Unix(req.Timestamp, 0)
	}
	m := &models.MatchRecord{
		ChosenNumber:  req.ChosenNumber,
		MatchedNumber: req.MatchedNumber,
		Timestamp:     ts,
	}
	if err := h.rec.Process(c.Request().Context(), m); err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("record match error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]interface{}{
		"chosenNumber":  m.ChosenNumber,
		"matchedNumber": m.MatchedNumber,
		"timestamp":     m.Timestamp,
	})
}

func (h *InsightsEchoHandler) Focus(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]int{"number": h.focus.Get()})
}

func (h *InsightsEchoHandler) SetFocus(c echo.Context) error {
	req := &models.FocusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.focus.Set(req.Number); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	h.logger.Info("focus number updated", xlogger.Int("number", req.Number))
	return xhttp.SuccessResponse(c, map[string]int{"number": req.Number})
}

func (h *InsightsEchoHandler) cachedResponse(endpoint, key string) ([]byte, bool) {
	if h.respCache == nil {
		return nil, false
	}
	b, ok, err := h.respCache.GetBytes(key)
	if err != nil {
		h.logger.Warn("response cache get error", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	}
	if ok {
		metrics.InsightsCacheHits.WithLabelValues(endpoint).Inc()
	}
	return b, ok
}

func (h *InsightsEchoHandler) respondAndCache(c echo.Context, endpoint, key string, data interface{}, ttl time.Duration) error {
	envelope := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("response marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.respCache != nil {
		if err := h.respCache.SetBytes(key, b, ttl); err != nil {
			h.logger.Warn("response cache set error", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, b)
}
