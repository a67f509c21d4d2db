package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/usecase"
)

type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
}

func NewOrderHandler(checkout *usecase.CheckoutUsecase, orders *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type GenerateGatewayOrderRequest struct {
	Items      []usecase.CartItem `json:"items" validate:"required,min=1"`
	CouponCode string             `json:"coupon_code"`
}

type GenerateOrderRequest struct {
	Items         []usecase.CartItem `json:"items" validate:"required,min=1"`
	CouponCode    string             `json:"coupon_code"`
	Address       string             `json:"address" validate:"required"`
	PhoneNumber   string             `json:"phone_number" validate:"required"`
	TransactionID string             `json:"transaction_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	OrderID int64  `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

// カートを見積もってゲートウェイ側に注文を作る。在庫はまだ減らさない
func (h *OrderHandler) GenerateGatewayOrder(c echo.Context) error {
	var req GenerateGatewayOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	order, err := h.checkout.GenerateGatewayOrder(c.Request().Context(), req.Items, req.CouponCode)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "razorpay order generated successfully", order)
}

// 決済後の確定処理
func (h *OrderHandler) GenerateOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	var req GenerateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.checkout.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Items:         req.Items,
		CouponCode:    req.CouponCode,
		Address:       req.Address,
		PhoneNumber:   req.PhoneNumber,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "order placed successfully", out)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	out, err := h.orders.MyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "orders fetched successfully", out)
}

// 管理者用。page/limit/status/user_idのクエリで絞れる
func (h *OrderHandler) AllOrders(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid page"})
		}
		page = p
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid limit"})
		}
		limit = l
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid user_id"})
		}
		userID = &id
	}

	out, err := h.orders.AllOrders(c.Request().Context(), usecase.AllOrdersInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "orders fetched successfully", out)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.orders.UpdateStatus(c.Request().Context(), userID, model.Role(role), usecase.UpdateOrderStatusInput{
		OrderID:   req.OrderID,
		NewStatus: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "order status updated successfully", out)
}
