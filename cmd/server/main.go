package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/seathive/seathive-server/internal/cache"
	"github.com/seathive/seathive-server/internal/config"
	"github.com/seathive/seathive-server/internal/database"
	"github.com/seathive/seathive-server/internal/handler"
	"github.com/seathive/seathive-server/internal/identity"
	"github.com/seathive/seathive-server/internal/queue"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/router"
	"github.com/seathive/seathive-server/internal/service"
	"github.com/seathive/seathive-server/internal/worker"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	movieRepo := repository.NewMovieRepo(db)
	cinemaRepo := repository.NewCinemaRepo(db)
	auditoriumRepo := repository.NewAuditoriumRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	outboxRepo := repository.NewOutboxRepo(db)

	policy := service.NewAccessPolicy(cinemaRepo)
	seatMaps := service.NewSeatMapService(showtimeRepo, cache.New(), cfg.SeatMapTTL)
	reservations := service.NewReservationService(showtimeRepo, ticketRepo, seatMaps, logger)

	publisher := queue.NewAMQPPublisher(cfg.BrokerURL, logger)
	defer publisher.Close()
	identityClient := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityServiceID, cfg.IdentitySecret)

	expiry := worker.NewExpiryWorker(ticketRepo, seatMaps, cfg.HoldWindow, cfg.ExpiryInterval, logger)
	dispatcher := worker.NewDispatcher(outboxRepo, publisher, identityClient, worker.DispatcherConfig{
		Interval:   cfg.OutboxInterval,
		BatchSize:  cfg.OutboxBatchSize,
		MaxRetries: cfg.OutboxMaxRetries,
		StuckAfter: cfg.OutboxStuckAfter,
	}, logger)
	go expiry.Run(ctx)
	go dispatcher.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, response cache disabled")
	}
	router.Register(e, router.Handlers{
		Health:      handler.NewHealthHandler(db),
		Movies:      handler.NewMovieHandler(movieRepo),
		Cinemas:     handler.NewCinemaHandler(cinemaRepo, policy),
		Auditoriums: handler.NewAuditoriumHandler(auditoriumRepo, policy),
		Showtimes:   handler.NewShowtimeHandler(showtimeRepo, auditoriumRepo, policy, seatMaps),
		Tickets:     handler.NewTicketHandler(reservations),
		Payments:    handler.NewPaymentHandler(reservations),
	}, cfg, config.LoadCacheConfig(), rdb)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			logger.Info("http server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

// newLogger picks the zap preset for the environment.
func newLogger(env string) *zap.Logger {
	if env == "prod" {
		logger, err := zap.NewProduction()
		if err != nil {
			os.Exit(1)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	return logger
}
