package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmorrow/larder/internal/cache"
	"github.com/jmorrow/larder/internal/config"
	"github.com/jmorrow/larder/internal/database"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/server"
	"github.com/jmorrow/larder/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	configureLogging(cfg.LogLevel)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	listService := services.NewListService(listRepo)

	ctx := context.Background()
	authService, err := services.NewAuthService(ctx, cfg.Auth, userRepo, listService)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	var sender services.PushSender
	if cfg.Push.GatewayURL != "" {
		sender = services.NewHTTPPushSender(cfg.Push.GatewayURL, cfg.Push.APIKey, cfg.Push.Timeout)
	} else {
		slog.Warn("push gateway not configured, notifications disabled")
		sender = services.NoopPushSender{}
	}
	notifier := services.NewNotifier(sender, deviceTokenRepo, notificationRepo)

	membershipCache := newCache(cfg.Cache)

	reminders := services.NewReminderScheduler(choreRepo, listRepo, notifier, cfg.Scheduler.ReminderInterval)
	reminders.Start()
	defer reminders.Stop()

	pruner := services.NewTokenPruner(deviceTokenRepo, sender, cfg.Scheduler.PruneInterval, cfg.Scheduler.StaleTokenAge)
	pruner.Start()
	defer pruner.Stop()

	srv := server.New(db, cfg, authService, notifier, membershipCache)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}
}

func configureLogging(level string) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func newCache(cfg config.CacheConfig) cache.Cache {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Error("connecting to redis, falling back to in-memory cache", "error", err)
			return cache.NewMemoryCache()
		}
		return redisCache
	}
	return cache.NewMemoryCache()
}
