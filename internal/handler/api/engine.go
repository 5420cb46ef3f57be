package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	models "MarketPulse/internal/domain/models"
	icache "MarketPulse/internal/service/cache"
	"MarketPulse/internal/service/metrics"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const defaultCacheTTL = 30 * time.Second

// EngineHandler exposes the correlation, recommendation and trend endpoints.
type EngineHandler struct {
	query    *usecase.CorrelationQuery
	recs     *usecase.Recommender
	trend    *usecase.TrendPredictor
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewEngineHandler(query *usecase.CorrelationQuery, recs *usecase.Recommender, trend *usecase.TrendPredictor) *EngineHandler {
	metrics.Register()
	return &EngineHandler{query: query, recs: recs, trend: trend, cacheTTL: defaultCacheTTL, rl: ratelimit.New()}
}

func (h *EngineHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetCacheTTL overrides how long read-endpoint responses stay cached.
func (h *EngineHandler) SetCacheTTL(d time.Duration) {
	if d > 0 {
		h.cacheTTL = d
	}
}

// SetLogger injects a structured logger.
func (h *EngineHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/correlations", h.Correlations)
	g.POST("/impact/predict", h.PredictImpact)
	g.POST("/recommendations/refresh", h.RefreshRecommendations)
	g.GET("/recommendations/active", h.ActiveRecommendations)
	g.POST("/trend/run", h.RunTrend)
	g.GET("/trend/latest", h.LatestTrends)
}

func (h *EngineHandler) Correlations(c echo.Context) error {
	start := time.Now()
	endpoint := "correlations"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.CorrelationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":correlations", 10, 5) {
		return h.rateLimited(c, endpoint)
	}

	cacheKey := "correlations:" + req.Category + ":" +
		strconv.FormatFloat(req.MinConfidence, 'f', 2, 64) + ":" + strconv.Itoa(req.Limit)
	if b, ok := h.cacheGet(endpoint, cacheKey); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.query.StrongestCorrelations(c.Request().Context(), models.EventCategory(req.Category), req.MinConfidence, req.Limit)
	if err != nil {
		return h.fail(c, endpoint, "query correlations failed", err)
	}
	h.cacheSet(endpoint, cacheKey, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) PredictImpact(c echo.Context) error {
	start := time.Now()
	endpoint := "predict_impact"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PredictImpactRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":predict", 10, 5) {
		return h.rateLimited(c, endpoint)
	}

	res, err := h.query.PredictPriceImpact(c.Request().Context(),
		models.EventCategory(req.Category), req.SentimentScore, models.ImpactLevel(req.ImpactLevel))
	if err != nil {
		return h.fail(c, endpoint, "predict impact failed", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) RefreshRecommendations(c echo.Context) error {
	start := time.Now()
	endpoint := "refresh_recommendations"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":refresh", 2, 0.2) {
		return h.rateLimited(c, endpoint)
	}

	batch, err := h.recs.Refresh(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, "refresh recommendations failed", err)
	}
	return xhttp.SuccessResponse(c, batch)
}

func (h *EngineHandler) ActiveRecommendations(c echo.Context) error {
	start := time.Now()
	endpoint := "active_recommendations"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":active", 20, 10) {
		return h.rateLimited(c, endpoint)
	}

	if b, ok := h.cacheGet(endpoint, "recommendations:active"); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	batch, err := h.recs.Active(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, "load active recommendations failed", err)
	}
	if batch == nil {
		batch = []models.Recommendation{}
	}
	h.cacheSet(endpoint, "recommendations:active", batch)
	return xhttp.SuccessResponse(c, batch)
}

func (h *EngineHandler) RunTrend(c echo.Context) error {
	start := time.Now()
	endpoint := "run_trend"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":trend_run", 2, 0.2) {
		return h.rateLimited(c, endpoint)
	}

	pred, err := h.trend.Run(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, "trend prediction failed", err)
	}
	return xhttp.SuccessResponse(c, pred)
}

func (h *EngineHandler) LatestTrends(c echo.Context) error {
	start := time.Now()
	endpoint := "latest_trends"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TrendHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":trend_latest", 20, 10) {
		return h.rateLimited(c, endpoint)
	}

	preds, err := h.trend.Latest(c.Request().Context(), req.N)
	if err != nil {
		return h.fail(c, endpoint, "load trend history failed", err)
	}
	if preds == nil {
		preds = []models.TrendPrediction{}
	}
	return xhttp.SuccessResponse(c, preds)
}

func (h *EngineHandler) rateLimited(c echo.Context, endpoint string) error {
	metrics.APIErrors.WithLabelValues(endpoint, "rate_limited").Inc()
	if h.l != nil {
		h.l.Warn("api rate_limited",
			applogger.String("endpoint", endpoint),
			applogger.String("remote", c.RealIP()))
	}
	return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
}

func (h *EngineHandler) fail(c echo.Context, endpoint, msg string, err error) error {
	metrics.APIErrors.WithLabelValues(endpoint, "internal").Inc()
	if h.l != nil {
		h.l.Error(msg, applogger.String("endpoint", endpoint), applogger.Error(err))
	}
	return xhttp.InternalServerErrorResponse(c)
}

// cacheGet returns the cached payload for key when present. Cache failures
// degrade to a direct read, never to a request error.
func (h *EngineHandler) cacheGet(endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("api cache_get_error", applogger.String("endpoint", endpoint), applogger.Error(err))
		}
		return nil, false
	}
	if ok && h.l != nil {
		h.l.Debug("api cache_hit", applogger.String("key", key))
	}
	return b, ok
}

func (h *EngineHandler) cacheSet(endpoint, key string, v interface{}) {
	if h.cache == nil {
		return
	}
	// Cache the full response envelope so hits and misses serve the same shape.
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    v,
	})
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil && h.l != nil {
		h.l.Warn("api cache_set_error", applogger.String("endpoint", endpoint), applogger.Error(err))
	}
}

var _ xhttp.Handler = (*EngineHandler)(nil)
