package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/raffleworks/lottery-service/internal/api/http"
	"github.com/raffleworks/lottery-service/internal/api/http/handlers"
	"github.com/raffleworks/lottery-service/internal/auth"
	"github.com/raffleworks/lottery-service/internal/config"
	"github.com/raffleworks/lottery-service/internal/events"
	"github.com/raffleworks/lottery-service/internal/lottery"
	"github.com/raffleworks/lottery-service/internal/observability"
	"github.com/raffleworks/lottery-service/internal/persistence"
	"github.com/raffleworks/lottery-service/internal/repository"
	"github.com/raffleworks/lottery-service/internal/service"
	"github.com/raffleworks/lottery-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		lotteryRepo repository.LotteryRepository
	)
	dependencies := map[string]handlers.Pinger{}
	var publisher service.Publisher
	if redis.Enabled() {
		dependencies["redis"] = redis
		publisher = redis
	}
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		lotteryRepo = repository.NewLotteryRepository(pg.PoolHandle())
		dependencies["postgres"] = pg
	} else {
		userRepo = repository.NewMemoryUserRepository()
		lotteryRepo = repository.NewMemoryLotteryRepository()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.StartNotificationWorker(
		service.NewNotificationService(dispatcher, publisher, logger, cfg.Notification),
		cfg.Notification.QueueSize,
		logger,
	)

	opts := service.LotteryOptions(cfg.Lottery)
	if hs, ok := opts.Random.(*lottery.HashSource); ok {
		logger.Info("hash random source in use", zap.String("seed_commitment", hs.Commitment()))
	}
	lotteryService := service.NewLotteryService(opts, service.LotteryDependencies{
		Repo:       lotteryRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	if _, err := lotteryService.Restore(ctx); err != nil {
		logger.Fatal("failed to restore lotteries", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService),
		Lotteries:      handlers.NewLotteriesHandler(lotteryService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notifications.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
