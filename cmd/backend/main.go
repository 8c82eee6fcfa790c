// Package main provides the entry point for the Linkboard backend service.
//
//	@title			Linkboard API
//	@version		1.0.0
//	@description	Affiliate link dashboard backend: short link redirects, curated lists and click analytics.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/auth"
	"Linkboard-Backend/internal/cache"
	"Linkboard-Backend/internal/config"
	"Linkboard-Backend/internal/database"
	"Linkboard-Backend/internal/geoip"
	httpHandler "Linkboard-Backend/internal/handler/http"
	"Linkboard-Backend/internal/repository/postgres"
	"Linkboard-Backend/internal/service"
	"Linkboard-Backend/pkg/logger"
	"Linkboard-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting Linkboard backend", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed initial data if enabled
	if cfg.Database.SeedData {
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// User-Agent OS parser: опционален, клики без него пишутся с os=null
	osParser, err := useragent.NewOSParser(cfg.Analytics.UARegexesPath, log)
	if err != nil {
		log.Warn("failed to initialize User-Agent OS parser, os enrichment disabled", zap.Error(err))
		osParser = nil
	}

	// Геолокация: тоже опциональна
	var geoClient *geoip.Client
	if cfg.Geo.Enabled {
		geoClient = geoip.New(cfg.Geo.Endpoint, cfg.Geo.Timeout, log)
	} else {
		log.Info("geolocation lookups disabled")
	}

	// Redis-кэш разрешения slug'ов: без него редирект ходит в БД напрямую
	var resolutionCache *cache.ResolutionCache
	if cfg.Cache.Enabled {
		resolutionCache, err = cache.New(context.Background(), cfg.Cache.Addr, cfg.Cache.TTL, log)
		if err != nil {
			log.Warn("failed to connect resolution cache, continuing without it", zap.Error(err))
			resolutionCache = nil
		}
	}
	defer func() {
		if err := resolutionCache.Close(); err != nil {
			log.Error("failed to close resolution cache", zap.Error(err))
		}
	}()

	// Initialize storage and services
	storage := postgres.New(db, log)
	slugService := service.NewSlugService(storage, &cfg.Slug)
	resolver := service.NewResolver(storage, resolutionCache, log)

	// Фоновый конвейер записи кликов
	processor := analytics.NewProcessor(storage, geoClient, osParser, log, analytics.ProcessorConfig{
		WorkerCount:     cfg.Analytics.Workers,
		BufferSize:      cfg.Analytics.BufferSize,
		RetryAttempts:   cfg.Analytics.RetryAttempts,
		RetryDelay:      cfg.Analytics.RetryDelay,
		ShutdownTimeout: cfg.Analytics.ShutdownTimeout,
	})
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start click processor", zap.Error(err))
	}

	// JWT service for the admin API
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte(cfg.Auth.Secret),
		AccessTokenDuration: cfg.Auth.TokenTTL,
		Issuer:              cfg.Auth.Issuer,
	})
	passwordService := auth.NewPasswordService()

	// HTTP server
	apiServer := httpHandler.NewServer(
		storage,
		slugService,
		resolver,
		processor,
		resolutionCache,
		jwtService,
		passwordService,
		log,
		cfg.HTTPServer.BaseURL,
		cfg.HTTPServer.NotFoundURL,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down Linkboard backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Сначала перестаем принимать запросы, затем дорабатываем очередь кликов
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := processor.Stop(); err != nil {
		log.Error("failed to stop click processor", zap.Error(err))
	}
}
