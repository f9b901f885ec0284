package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArtyomSF99/url-shortener/internal/cache"
	"github.com/ArtyomSF99/url-shortener/internal/config"
	"github.com/ArtyomSF99/url-shortener/internal/database"
	"github.com/ArtyomSF99/url-shortener/internal/hasher"
	"github.com/ArtyomSF99/url-shortener/internal/jwt"
	"github.com/ArtyomSF99/url-shortener/internal/logger"
	"github.com/ArtyomSF99/url-shortener/internal/queue"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
	"github.com/ArtyomSF99/url-shortener/internal/server"
	"github.com/ArtyomSF99/url-shortener/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWTSecret == "" {
		zap.L().Fatal("JWT_SECRET must be set")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, "postgres"); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional, redirects fall back to the database without it
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			zap.L().Warn("redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			zap.L().Info("connected to redis cache")
		}
	}
	if cacheClient == nil && cfg.LocalCacheFallback {
		zap.L().Info("using in-process redirect cache")
		cacheClient = cache.NewMemoryCache()
	}

	// Registration jobs go through RabbitMQ when configured
	var jobs queue.Queue
	if cfg.RabbitMQURL != "" {
		jobs, err = queue.NewRabbitMQ(ctx, cfg.RabbitMQURL)
		if err != nil {
			zap.L().Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		zap.L().Info("connected to rabbitmq")
	} else {
		zap.L().Warn("RABBITMQ_URL not set, using in-process registration queue")
		jobs = queue.NewMemory(1024, 3)
	}
	defer jobs.Close()

	passwords := hasher.NewPool(cfg.BcryptCost, cfg.HasherWorkers)
	defer passwords.Close()

	urlRepo := repository.NewURLRepository(db)
	userRepo := repository.NewUserRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	var resolver service.Resolver
	if cfg.DNSCheck {
		resolver = net.DefaultResolver
	}

	urlService := service.NewURLService(urlRepo, cacheClient, resolver)
	authService := service.NewAuthService(userRepo, passwords, jobs, cfg.RegistrationQueue, jwtService)
	registrations := service.NewRegistrationProcessor(userRepo, passwords)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := jobs.Consume(ctx, cfg.RegistrationQueue, registrations.Handle, cfg.RegistrationWorkers); err != nil {
			zap.L().Error("registration consumer stopped", zap.Error(err))
			stop()
		}
	}()

	srv, err := server.New(server.Deps{
		Config:      cfg,
		URLService:  urlService,
		AuthService: authService,
		JWTService:  jwtService,
	})
	if err != nil {
		zap.L().Fatal("failed to build router", zap.Error(err))
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("server starting", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}

	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		zap.L().Warn("registration workers did not stop in time")
	}
}
