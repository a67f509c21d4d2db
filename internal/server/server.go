package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/usecase"
	"app/internal/validator"
	"app/pkg/metrics"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Collection *handler.CollectionHandler
	Coupon     *handler.CouponHandler
	Order      *handler.OrderHandler
}

// New はechoを組み立てて返す。Startは呼び出し側の仕事
func New(cfg config.Config, h Handlers, sm *metrics.ServerMetrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	if sm != nil {
		e.Use(metricsMiddleware(sm))
	}

	e.HTTPErrorHandler = errorHandler

	registerRoutes(e, cfg, h)
	return e
}

// パス×ステータスで件数、パスでレイテンシを記録する
func metricsMiddleware(sm *metrics.ServerMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			sm.Requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
			sm.LatencyMS.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}

// echo自身が返すエラー（404など）も共通のレスポンス形に揃える
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		_ = c.JSON(he.Status, handler.ApiResponse{Success: false, Message: he.Message})
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg := http.StatusText(he.Code)
		if he.Code == http.StatusNotFound {
			msg = "Route not found"
		}
		_ = c.JSON(he.Code, handler.ApiResponse{Success: false, Message: msg})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, handler.ApiResponse{Success: false, Message: "internal error"})
}
