// Package router wires handlers to routes.  Unauthenticated surface is the
// health check and the auth endpoints; everything else lives under /v1
// behind JWT auth.  The money-moving routes additionally carry the Redis
// token-bucket limiter, and the public club listings sit behind the
// response cache.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/handler"
	"github.com/GoormOnlyOne/onlyone-server/internal/middleware"
)

// Handlers aggregates every handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Club       *handler.ClubHandler
	Schedule   *handler.ScheduleHandler
	Settlement *handler.SettlementHandler
	Wallet     *handler.WalletHandler
	Payment    *handler.PaymentHandler
}

// Register mounts all routes.  rateLimit guards the settlement and payment
// routes; cache fronts the read-only club/schedule listings.  Either may
// be a pass-through when Redis is unavailable.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit, cache echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health.Check)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	v1.POST("/auth/logout", h.Auth.Logout)
	v1.GET("/me", h.Auth.Me)

	v1.POST("/clubs", h.Club.Create)
	v1.GET("/clubs", h.Club.List, cache)
	v1.POST("/clubs/:clubId/join", h.Club.Join)

	v1.POST("/clubs/:clubId/schedules", h.Schedule.Create)
	v1.GET("/clubs/:clubId/schedules", h.Schedule.List, cache)
	v1.POST("/clubs/:clubId/schedules/:scheduleId/join", h.Schedule.Join)

	v1.POST("/clubs/:clubId/schedules/:scheduleId/settlements", h.Settlement.Create, rateLimit)
	v1.POST("/clubs/:clubId/schedules/:scheduleId/settlements/:settlementId", h.Settlement.Pay, rateLimit)

	v1.GET("/users/wallet", h.Wallet.History)

	v1.POST("/payments/charge", h.Payment.Charge, rateLimit)
	v1.POST("/payments/confirm", h.Payment.Confirm, rateLimit)
}
