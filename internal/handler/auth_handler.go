package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	auth "app/internal/usecase/auth_usecase"
)

type AuthHandler struct {
	signup         *auth.SignupUsecase
	login          *auth.LoginUsecase
	logout         *auth.LogoutUsecase
	refresh        *auth.RefreshUsecase
	changePassword *auth.ChangePasswordUsecase
	forgotPassword *auth.ForgotPasswordUsecase
	resetPassword  *auth.ResetPasswordUsecase
	profile        *auth.ProfileUsecase
}

func NewAuthHandler(
	signup *auth.SignupUsecase,
	login *auth.LoginUsecase,
	logout *auth.LogoutUsecase,
	refresh *auth.RefreshUsecase,
	changePassword *auth.ChangePasswordUsecase,
	forgotPassword *auth.ForgotPasswordUsecase,
	resetPassword *auth.ResetPasswordUsecase,
	profile *auth.ProfileUsecase,
) *AuthHandler {
	return &AuthHandler{
		signup:         signup,
		login:          login,
		logout:         logout,
		refresh:        refresh,
		changePassword: changePassword,
		forgotPassword: forgotPassword,
		resetPassword:  resetPassword,
		profile:        profile,
	}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	user, err := h.signup.Execute(c.Request().Context(), auth.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "user registered successfully", user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.login.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	setAuthCookies(c, out)
	return respond(c, http.StatusOK, "user logged in successfully", out)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}
	if err := h.logout.Execute(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	clearAuthCookies(c)
	return respond(c, http.StatusOK, "user logged out successfully", nil)
}

// クッキー優先、なければbodyのrefresh_token
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw := ""
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie != nil {
		raw = cookie.Value
	}
	if raw == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}

	out, err := h.refresh.Execute(c.Request().Context(), raw)
	if err != nil {
		return writeError(c, err)
	}

	setAuthCookies(c, out)
	return respond(c, http.StatusOK, "access token refreshed", out)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	if err := h.changePassword.Execute(c.Request().Context(), userID, auth.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "password changed successfully", nil)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	if err := h.forgotPassword.Execute(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "password reset email sent", nil)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	if err := h.resetPassword.Execute(c.Request().Context(), auth.ResetPasswordInput{
		Token:           c.Param("token"),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "password reset successfully", nil)
}

func (h *AuthHandler) Profile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ApiResponse{Success: false, Message: "unauthorized request"})
	}

	user, err := h.profile.Execute(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "current user fetched successfully", user)
}

// SPAが使うのでトークンはクッキーにも積む
func setAuthCookies(c echo.Context, out auth.LoginOutput) {
	c.SetCookie(&http.Cookie{
		Name:     "accessToken",
		Value:    out.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   out.ExpiresIn,
	})
	c.SetCookie(&http.Cookie{
		Name:     "refreshToken",
		Value:    out.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int((10 * 24 * time.Hour).Seconds()),
	})
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
			MaxAge:   -1,
		})
	}
}
