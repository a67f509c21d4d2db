package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/middleware"
	"app/pkg/metrics"
)

func registerRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	authed := middleware.AuthJWT(cfg)
	staff := middleware.RoleGuard(string(model.RoleAdmin), string(model.RoleModerator))
	adminOnly := middleware.RoleGuard(string(model.RoleAdmin))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.ApiResponse{Success: true, Message: "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api/v1")

	user := api.Group("/user")
	user.POST("/signup", h.Auth.Signup)
	user.POST("/login", h.Auth.Login)
	user.POST("/refresh-token", h.Auth.RefreshToken)
	user.POST("/password/forgot-password", h.Auth.ForgotPassword)
	user.POST("/password/reset/:token", h.Auth.ResetPassword)
	user.GET("/logout", h.Auth.Logout, authed)
	user.POST("/password/change", h.Auth.ChangePassword, authed)
	user.GET("/profile", h.Auth.Profile, authed)

	product := api.Group("/product")
	product.GET("/all-products", h.Product.ListAll)
	product.GET("/:id", h.Product.GetByID)
	product.GET("/collection/:id", h.Product.ListByCollection)
	product.POST("/", h.Product.Create, authed, staff)
	product.DELETE("/:id", h.Product.Delete, authed, staff)

	collection := api.Group("/collection")
	collection.GET("/", h.Collection.ListAll)
	collection.POST("/", h.Collection.Create, authed, adminOnly)
	collection.PUT("/:id", h.Collection.Update, authed, adminOnly)
	collection.DELETE("/:id", h.Collection.Delete, authed, adminOnly)

	coupon := api.Group("/coupon")
	coupon.GET("/", h.Coupon.ListAll, authed, staff)
	coupon.POST("/", h.Coupon.Create, authed, adminOnly)
	coupon.PUT("/action/:id", h.Coupon.UpdateAction, authed, staff)
	coupon.DELETE("/:id", h.Coupon.Delete, authed, staff)

	order := api.Group("/order", authed)
	order.POST("/generate-razorpay-order-id", h.Order.GenerateGatewayOrder)
	order.POST("/generate-order", h.Order.GenerateOrder)
	order.GET("/my-orders", h.Order.MyOrders)
	order.GET("/all-orders", h.Order.AllOrders, staff)
	order.PUT("/update-order-status", h.Order.UpdateOrderStatus)
}
