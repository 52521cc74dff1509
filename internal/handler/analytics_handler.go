package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /stats のAPI。評価トップは公開、売上と在庫僅少は管理者のみ。
type AnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

// DI
func NewAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/stats/top-rated", h.topRated)

	admin := e.Group("", middleware.AuthJWT(cfg), middleware.RoleGuard(string(model.RoleAdmin)))
	admin.GET("/stats/revenue", h.revenue)
	admin.GET("/stats/low-stock", h.lowStock)
}

func (h *AnalyticsHandler) topRated(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	items, err := h.uc.TopRated(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, items)
}

func (h *AnalyticsHandler) revenue(c echo.Context) error {
	var from, to *time.Time
	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid startDate")
		}
		from = &t
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid endDate")
		}
		to = &t
	}

	out, err := h.uc.RevenueStats(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

func (h *AnalyticsHandler) lowStock(c echo.Context) error {
	threshold := 0
	if v := c.QueryParam("threshold"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid threshold")
		}
		threshold = t
	}

	items, err := h.uc.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, items)
}
