package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/booking"
	"github.com/zumagrand/booking-api/internal/config"
	"github.com/zumagrand/booking-api/internal/database"
	"github.com/zumagrand/booking-api/internal/gateway"
	"github.com/zumagrand/booking-api/internal/handler"
	"github.com/zumagrand/booking-api/internal/mailer"
	"github.com/zumagrand/booking-api/internal/middleware"
	"github.com/zumagrand/booking-api/internal/queue"
	"github.com/zumagrand/booking-api/internal/repository"
	"github.com/zumagrand/booking-api/internal/router"
	"github.com/zumagrand/booking-api/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	roomRepo := repository.NewRoomRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	paystack := gateway.NewPaystack(cfg.PaystackSecretKey, cfg.PaystackBaseURL, cfg.GatewayTimeout)
	notifier := queue.NewPublisher(cfg.RabbitURL, logger)
	svc := booking.NewService(roomRepo, bookingRepo, paystack, notifier, cfg.PublicURL, logger)

	// The notification consumer runs in-process. Its failures stay in
	// its own goroutine and never affect the request path.
	var mail mailer.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResend(cfg.ResendAPIKey, "")
	}
	consumer := queue.NewConsumer(cfg.RabbitURL, mail, cfg.HotelEmail, cfg.MailFrom, logger)
	go func() {
		if err := consumer.Run(context.Background()); err != nil {
			logger.Warn("booking consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterRooms(e, handler.NewRoomHandler(svc))

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	router.RegisterPayments(e, handler.NewPaymentHandler(svc), limiter)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
