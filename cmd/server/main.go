package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "mesa/docs"
	"mesa/internal/caching"
	"mesa/internal/config"
	"mesa/internal/handlers"
	"mesa/internal/jobs"
	"mesa/internal/logger"
	"mesa/internal/messaging"
	"mesa/internal/middleware"
	"mesa/internal/realtime"
	"mesa/internal/repositories"
	"mesa/internal/services"
	"mesa/internal/storage"
	"mesa/pkg/database"
)

const version = "1.0.0"

//	@title						mesa API
//	@version					1.0
//	@description				Multi-tenant restaurant ordering backend.
//	@BasePath					/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New("mesa", cfg.SlogLevel())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	// Redis backs the menu cache and, by default, the realtime broker.
	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	var cache caching.CacheService = caching.NewRedisCacheService(redisClient)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, menu cache disabled", "addr", cfg.Redis.Addr, "error", err)
		cache = caching.NoopCache{}
	}

	broker := newBroker(cfg, redisClient, log)
	defer broker.Close()

	var sinks []services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		kitchen, err := messaging.Dial(cfg.RabbitMQ.URL, log)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer kitchen.Close()
		sinks = append(sinks, kitchen)
	}

	store, err := storage.NewMinioStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err == nil {
		err = store.EnsureBucket(ctx, cfg.Minio.ReportsBucket)
	}
	if err != nil {
		log.Warn("object storage unavailable, reports disabled", "endpoint", cfg.Minio.Endpoint, "error", err)
		store = nil
	}

	// Repositories
	restaurantRepo := repositories.NewRestaurantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)

	// Services
	notifier := services.NewNotifier(broker, log, sinks...)
	orderSvc := services.NewOrderService(orderRepo, notifier, log, cfg.Orders.NumberRetries)
	menuSvc := services.NewMenuService(restaurantRepo, categoryRepo, productRepo, cache, cfg.Redis.MenuCacheTTL, log)
	restaurantSvc := services.NewRestaurantService(restaurantRepo, menuSvc)
	authSvc := services.NewAuthService(restaurantRepo, userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	var reports services.ReportService
	if store != nil {
		reports = services.NewReportService(orderRepo, restaurantRepo, store, cfg.Minio.ReportsBucket, log)
	}

	authn, err := newAuthenticator(cfg, log)
	if err != nil {
		return err
	}
	defer authn.Close()

	scheduler, err := jobs.NewScheduler(orderSvc, reports, cfg.Jobs, log)
	if err != nil {
		return err
	}
	scheduler.Start()

	streams := realtime.NewStreams()
	set := &handlers.Set{
		Public:      handlers.NewPublicHandlers(orderSvc, menuSvc, restaurantSvc, broker, log),
		Auth:        handlers.NewAuthHandlers(authSvc, log),
		Restaurants: handlers.NewRestaurantHandlers(restaurantSvc, log),
		Categories:  handlers.NewCategoryHandlers(menuSvc, log),
		Products:    handlers.NewProductHandlers(menuSvc, log),
		Orders:      handlers.NewOrderHandlers(orderSvc, restaurantSvc, broker, log),
		Health:      handlers.NewHealthHandlers(pool, cache, version),
		Streams:     streams,
	}
	if reports != nil {
		set.Reports = handlers.NewReportHandlers(reports, log)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.RegisterOnShutdown(streams.Close)
	e.Use(echoMiddleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	handlers.RegisterRoutes(e, set, authn.Middleware(), log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("mesa server starting", "version", version, "port", cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	streams.Wait()
	if err := scheduler.Stop(); err != nil {
		log.Error("scheduler shutdown failed", "error", err)
	}
	notifier.Wait()
	log.Info("mesa server stopped")
	return nil
}

func newBroker(cfg *config.Config, client *redis.Client, log *slog.Logger) realtime.Broker {
	if cfg.Redis.RealtimeBackend == "memory" {
		log.Info("using in-process realtime broker")
		return realtime.NewLocalBroker(log)
	}
	return realtime.NewRedisBroker(client, log)
}

func newAuthenticator(cfg *config.Config, log *slog.Logger) (*middleware.Authenticator, error) {
	if cfg.Auth.JWKSURL != "" {
		return middleware.NewJWKSAuthenticator(cfg.Auth.JWKSURL, log)
	}
	return middleware.NewHMACAuthenticator(cfg.Auth.JWTSecret), nil
}
