package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"app/internal/config"
	"app/internal/middleware"
)

const testSecret = "test-access-secret"

func testConfig() config.Config {
	return config.Config{AccessTokenSecret: testSecret}
}

func issueToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

// 検証後にcontextへ入った値をそのまま返すハンドラ
func echoContextHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": c.Get(middleware.CtxUserIDKey),
		"role":    c.Get(middleware.CtxUserRoleKey),
	})
}

func runAuthJWT(t *testing.T, setup func(req *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	setup(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := middleware.AuthJWT(testConfig())(echoContextHandler)
	err := h(c)
	assert.NoError(t, err)
	return rec
}

func TestAuthJWT_MissingToken(t *testing.T) {
	rec := runAuthJWT(t, func(req *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_BearerHeader(t *testing.T) {
	token := issueToken(t, testSecret, validClaims())
	rec := runAuthJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)
	assert.Contains(t, rec.Body.String(), `"role":"USER"`)
}

func TestAuthJWT_CookieFallback(t *testing.T) {
	token := issueToken(t, testSecret, validClaims())
	rec := runAuthJWT(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := issueToken(t, "other-secret", validClaims())
	rec := runAuthJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := issueToken(t, testSecret, claims)
	rec := runAuthJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MalformedHeader(t *testing.T) {
	token := issueToken(t, testSecret, validClaims())
	rec := runAuthJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", token) // Bearerなし
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuard(t *testing.T) {
	cases := []struct {
		role     string
		allowed  []string
		wantCode int
	}{
		{"ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"MODERATOR", []string{"ADMIN", "MODERATOR"}, http.StatusOK},
		{"USER", []string{"ADMIN"}, http.StatusForbidden},
		{"USER", []string{"ADMIN", "MODERATOR"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.CtxUserRoleKey, tc.role)

		h := middleware.RoleGuard(tc.allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, h(c))
		assert.Equal(t, tc.wantCode, rec.Code, "role=%s allowed=%v", tc.role, tc.allowed)
	}
}

func TestRoleGuard_NoRoleInContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := middleware.RoleGuard("ADMIN")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
