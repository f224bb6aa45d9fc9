package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"PairScope/internal/alert"
	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/service/ratelimit"
	"PairScope/internal/usecase"
	"PairScope/pkg/cache"
	"PairScope/pkg/export"
	xhttp "PairScope/pkg/http"
	applogger "PairScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the query surface: candles, ticks, per-symbol
// statistics, pair analytics, stationarity tests, alert management and
// CSV export.
type MarketHandler struct {
	log    *applogger.Logger
	market *usecase.MarketQuery
	pair   *usecase.PairAnalyzer
	alerts *alert.Engine

	cache    cache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
}

func NewMarketHandler(
	log *applogger.Logger,
	market *usecase.MarketQuery,
	pair *usecase.PairAnalyzer,
	alerts *alert.Engine,
) *MarketHandler {
	return &MarketHandler{
		log:      log,
		market:   market,
		pair:     pair,
		alerts:   alerts,
		cacheTTL: 5 * time.Second,
		rl:       ratelimit.New(),
	}
}

// SetCache enables response memoization for the analytics endpoints.
func (h *MarketHandler) SetCache(c cache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/candles", h.Candles)
	g.GET("/ticks", h.Ticks)
	g.GET("/stats", h.Stats)
	g.GET("/pair", h.Pair)
	g.GET("/adf", h.ADF)
	g.GET("/alerts/active", h.ActiveAlerts)
	g.GET("/alerts/history", h.AlertHistory)
	g.POST("/alerts/:name/active", h.SetAlertActive)
	g.DELETE("/alerts/:name", h.DeleteAlert)
	g.GET("/export/candles", h.ExportCandles)
}

func (h *MarketHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.market.GetCandles(usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		Timeframe: drepo.NormalizeTimeframe(req.TF),
		From:      req.From,
		To:        req.To,
		Limit:     req.Limit,
	})
	if err != nil {
		h.log.Error("candles query error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Ticks(c echo.Context) error {
	req := &models.TicksRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ticks := h.market.GetTicks(req.Symbol, req.Limit)
	return xhttp.ListResponse(c, ticks, int64(len(ticks)))
}

func (h *MarketHandler) Stats(c echo.Context) error {
	req := &models.StatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pair.Stats(drepo.NormalizeTimeframe(req.TF), req.Symbol)
	if err != nil {
		h.log.Error("stats query error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// pairResponse mirrors models.PairAnalysis with NaN encoded as null,
// which encoding/json cannot represent in a plain float64.
type pairResponse struct {
	SymbolA     string     `json:"symbol_a"`
	SymbolB     string     `json:"symbol_b"`
	Timeframe   string     `json:"timeframe"`
	Window      int        `json:"window"`
	HedgeRatio  float64    `json:"hedge_ratio"`
	Spread      []*float64 `json:"spread"`
	ZScore      []*float64 `json:"zscore"`
	Correlation []*float64 `json:"correlation"`
}

func (h *MarketHandler) Pair(c echo.Context) error {
	req := &models.PairRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":pair", 5, 2) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	key := fmt.Sprintf("pair:%s:%s:%s:%d:%d", req.SymbolA, req.SymbolB, req.TF, req.Window, req.Tail)
	return h.respondCached(c, key, func() (interface{}, error) {
		res, err := h.pair.Analyze(drepo.NormalizeTimeframe(req.TF), req.SymbolA, req.SymbolB, req.Window, req.Tail)
		if err != nil {
			return nil, err
		}
		return &pairResponse{
			SymbolA:     res.SymbolA,
			SymbolB:     res.SymbolB,
			Timeframe:   res.Timeframe,
			Window:      res.Window,
			HedgeRatio:  res.HedgeRatio,
			Spread:      nullable(res.Spread),
			ZScore:      nullable(res.ZScore),
			Correlation: nullable(res.Correlation),
		}, nil
	})
}

func (h *MarketHandler) ADF(c echo.Context) error {
	req := &models.ADFRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":adf", 5, 2) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	key := fmt.Sprintf("adf:%s:%s:%s", req.SymbolA, req.SymbolB, req.TF)
	return h.respondCached(c, key, func() (interface{}, error) {
		res, err := h.pair.SpreadADF(drepo.NormalizeTimeframe(req.TF), req.SymbolA, req.SymbolB)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

func (h *MarketHandler) ActiveAlerts(c echo.Context) error {
	active := h.alerts.ListActive()
	return xhttp.ListResponse(c, active, int64(len(active)))
}

func (h *MarketHandler) AlertHistory(c echo.Context) error {
	history := h.alerts.History()
	return xhttp.ListResponse(c, history, int64(len(history)))
}

func (h *MarketHandler) SetAlertActive(c echo.Context) error {
	name := c.Param("name")
	req := &models.AlertActiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.alerts.SetActive(name, req.Active) {
		return xhttp.NotFoundResponse(c, fmt.Sprintf("alert %q not found", name))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"name":   name,
		"active": req.Active,
	})
}

func (h *MarketHandler) DeleteAlert(c echo.Context) error {
	name := c.Param("name")

	removed := h.alerts.Unregister(name)
	if removed == 0 {
		return xhttp.NotFoundResponse(c, fmt.Sprintf("alert %q not found", name))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"name":    name,
		"removed": removed,
	})
}

func (h *MarketHandler) ExportCandles(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.market.GetCandles(usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		Timeframe: drepo.NormalizeTimeframe(req.TF),
		Limit:     10000,
	})
	if err != nil {
		h.log.Error("export query error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}

	filename := fmt.Sprintf("candles_%s_%s.csv", res.Symbol, res.Timeframe)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	return export.WriteBarsCSV(c.Response(), res.Candles)
}

// respondCached serves the memoized response body when fresh, otherwise
// builds, stores, and serves it.
func (h *MarketHandler) respondCached(c echo.Context, key string, build func() (interface{}, error)) error {
	if h.cache != nil {
		b, ok, err := h.cache.GetBytes(key)
		if err != nil {
			h.log.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	payload, err := build()
	if err != nil {
		h.log.Error("analytics query error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}

	body := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    payload,
	}
	b, err := json.Marshal(body)
	if err != nil {
		h.log.Error("response marshal failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil {
			h.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

// mapDomainError converts domain sentinels to HTTP-aware errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidTimeframe):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

// nullable converts NaN/Inf entries to nil so the slice is JSON-safe.
func nullable(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		v := x
		out[i] = &v
	}
	return out
}
