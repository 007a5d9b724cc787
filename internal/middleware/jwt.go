// Package middleware provides reusable HTTP middleware: bearer-token
// authentication, a Redis token-bucket rate limiter and a Redis response
// cache for read-heavy public routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextUserID is the context key under which JWTAuth stores the
// authenticated user's id as a uint64.
const ContextUserID = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context.  Handlers on
// protected routes read it back with c.Get(ContextUserID).(uint64).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "invalid claims")
			}
			// Numeric JSON claims decode as float64.
			sub, ok := claims["sub"].(float64)
			if !ok || sub < 1 {
				return unauthorized(c, "invalid subject")
			}

			c.Set(ContextUserID, uint64(sub))
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"status":  http.StatusUnauthorized,
		"code":    "UNAUTHENTICATED",
		"message": msg,
	})
}
