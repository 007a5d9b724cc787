package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/GoormOnlyOne/onlyone-server/internal/config"
	"github.com/GoormOnlyOne/onlyone-server/internal/database"
	"github.com/GoormOnlyOne/onlyone-server/internal/gateway"
	"github.com/GoormOnlyOne/onlyone-server/internal/handler"
	"github.com/GoormOnlyOne/onlyone-server/internal/logging"
	"github.com/GoormOnlyOne/onlyone-server/internal/middleware"
	"github.com/GoormOnlyOne/onlyone-server/internal/queue"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
	"github.com/GoormOnlyOne/onlyone-server/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment
	logging.Setup()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis backs the rate limiter and the listing cache.  Both degrade to
	// pass-throughs when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		slog.Warn("redis unavailable; rate limiting and response cache disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clubs := repository.NewClubRepo(db)
	schedules := repository.NewScheduleRepo(db)
	settlements := repository.NewSettlementRepo(db)
	wallets := repository.NewWalletRepo(db)
	payments := repository.NewPaymentRepo(db)

	toss := gateway.NewClient(cfg.TossBaseURL, cfg.TossSecretKey, cfg.GatewayTimeout)

	h := router.Handlers{
		Health:     handler.NewHealthHandler(db),
		Auth:       handler.NewAuthHandler(cfg, users, tokens),
		Club:       handler.NewClubHandler(clubs),
		Schedule:   handler.NewScheduleHandler(clubs, schedules),
		Settlement: handler.NewSettlementHandler(db, schedules, settlements, wallets, cfg.AMQPURL),
		Wallet:     handler.NewWalletHandler(wallets),
		Payment:    handler.NewPaymentHandler(db, payments, wallets, toss),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	router.Register(e, h, cfg.JWTSecret, rateLimit, cache)

	// Notification consumer runs for the lifetime of the process and
	// survives broker restarts on its own.
	go queue.StartNotificationConsumer(cfg.AMQPURL)

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
