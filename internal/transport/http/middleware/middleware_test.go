package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wake-up-challenge/internal/api"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func authApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop().Sugar()))
	app.Get("/", Auth(AuthConfig{Secret: secret, Issuer: "wake"}), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func TestAuth(t *testing.T) {
	valid := jwt.RegisteredClaims{Subject: "u1", Issuer: "wake", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{Subject: "u1", Issuer: "x"}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
			Subject: "u1", Issuer: "wake", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}), http.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{Issuer: "wake"}), http.StatusUnauthorized},
		{"hs384 rejected", "Bearer " + sign(t, jwt.SigningMethodHS384, []byte(secret), valid), http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), valid), http.StatusOK},
	}

	app := authApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusUnauthorized {
				var body api.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				require.Equal(t, api.UNAUTHENTICATED, body.Error.Code)
			}
		})
	}
}

func TestHookKey(t *testing.T) {
	app := fiber.New()
	app.Post("/hook", HookKey("k"), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	closed := fiber.New()
	closed.Post("/hook", HookKey(""), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for _, tc := range []struct {
		app    *fiber.App
		key    string
		status int
	}{
		{app, "k", http.StatusNoContent},
		{app, "wrong", http.StatusUnauthorized},
		{app, "", http.StatusUnauthorized},
		{closed, "", http.StatusUnauthorized},
	} {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		if tc.key != "" {
			req.Header.Set(HeaderHookKey, tc.key)
		}
		resp, err := tc.app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, tc.status, resp.StatusCode)
	}
}
