package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"app/internal/usecase"
)

// 全エンドポイント共通のレスポンス形
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, ApiResponse{Success: true, Message: message, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ApiResponse{Success: false, Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ApiResponse{Success: false, Message: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func getUserRoleFromContext(c echo.Context) (string, bool) {
	v := c.Get("user_role")
	if v == nil {
		return "", false
	}
	role, ok := v.(string)
	if !ok {
		return "", false
	}
	return role, true
}
