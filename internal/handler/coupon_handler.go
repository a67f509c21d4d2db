package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/usecase"
)

type CouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type CreateCouponRequest struct {
	Code     string `json:"code" validate:"required,max=40"`
	Discount int64  `json:"discount" validate:"gte=0,lte=100"`
}

type UpdateCouponActionRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *CouponHandler) Create(c echo.Context) error {
	var req CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	coupon, err := h.uc.Create(c.Request().Context(), usecase.CreateCouponInput{
		Code:     req.Code,
		Discount: req.Discount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "coupon created successfully", coupon)
}

// 有効・無効の切り替え
func (h *CouponHandler) UpdateAction(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	var req UpdateCouponActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	coupon, err := h.uc.UpdateActive(c.Request().Context(), actorID, id, *req.Active)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "coupon updated successfully", coupon)
}

func (h *CouponHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "coupon deleted successfully", nil)
}

func (h *CouponHandler) ListAll(c echo.Context) error {
	coupons, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "coupons fetched successfully", coupons)
}
