package middleware

import (
	"crypto/subtle"
	"strings"

	"wake-up-challenge/internal/api"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// LocalUserID is the fiber local holding the verified caller id.
	LocalUserID = "uid"
	// HeaderHookKey carries the shared secret of internal hooks.
	HeaderHookKey = "X-Hook-Key"
)

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Secret string
	Issuer string
}

// Auth verifies an HS256 bearer token and stores its subject as the caller id.
func Auth(cfg AuthConfig) fiber.Handler {
	key := []byte(cfg.Secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return unauthenticated(c, "bearer token required")
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil || claims.Subject == "" {
			return unauthenticated(c, "invalid token")
		}

		c.Locals(LocalUserID, claims.Subject)
		return c.Next()
	}
}

// UserID returns the verified caller id, or "" outside Auth.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(LocalUserID).(string)
	return uid
}

// HookKey admits requests carrying the shared hook key. An empty key admits nobody.
func HookKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(HeaderHookKey)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return unauthenticated(c, "hook key required")
		}
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(api.NewErrorResponse(api.UNAUTHENTICATED, msg))
}
