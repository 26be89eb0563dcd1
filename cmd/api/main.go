package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/itinerary-maker/api/internal/auth"
	"github.com/octobees/itinerary-maker/api/internal/cache"
	"github.com/octobees/itinerary-maker/api/internal/config"
	"github.com/octobees/itinerary-maker/api/internal/database"
	"github.com/octobees/itinerary-maker/api/internal/handler"
	"github.com/octobees/itinerary-maker/api/internal/logging"
	middlewarepkg "github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/repository"
	"github.com/octobees/itinerary-maker/api/internal/router"
	"github.com/octobees/itinerary-maker/api/internal/service"
	"github.com/octobees/itinerary-maker/api/internal/storage"
	"github.com/octobees/itinerary-maker/api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var delegationCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		client, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		delegationCache = cache.NewRedis(client, "itinerary:")
	}

	store, err := storage.Open(ctx, cfg.Blob)
	if err != nil {
		logger.Fatal("failed to open blob store", zap.Error(err))
	}

	var notifier worker.Poster
	if cfg.WorkerBaseURL != "" {
		client, err := worker.NewClient(ctx, nil, cfg.WorkerBaseURL)
		if err != nil {
			logger.Fatal("failed to build worker client", zap.Error(err))
		}
		notifier = client
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	rolesRepo := repository.NewPGXAccountRolesRepository(pool)
	companiesRepo := repository.NewPGXCompaniesRepository(pool)
	numbersRepo := repository.NewPGXContactNumbersRepository(pool)
	profilesRepo := repository.NewPGXSocialMediaRepository(pool)
	lookupsRepo := repository.NewPGXLookupsRepository(pool)
	itinerariesRepo := repository.NewPGXItinerariesRepository(pool)

	normalizer := service.NewContactNormalizer(cfg.DefaultPhoneRegion)
	actors := service.NewActorResolver(usersRepo)

	authService := service.NewAuthService(usersRepo, rolesRepo, jwtManager)
	userService := service.NewUserService(usersRepo, rolesRepo, normalizer)
	companiesService := service.NewCompaniesService(companiesRepo, actors)
	numbersService := service.NewContactNumbersService(numbersRepo, companiesRepo, normalizer)
	profilesService := service.NewSocialMediaService(profilesRepo, usersRepo, normalizer)
	rolesService := service.NewAccountRolesService(rolesRepo, delegationCache)
	delegationService := service.NewDelegationService(usersRepo, rolesRepo, lookupsRepo, service.DelegationOptions{
		Cache:      delegationCache,
		TTL:        cfg.DelegationCacheTTL,
		FullWeight: cfg.DelegationFullWeight,
		Logger:     logger.Named("delegation"),
	})
	itineraryService := service.NewItineraryService(companiesRepo, numbersRepo, itinerariesRepo, store, service.ItineraryOptions{
		Notifier:      notifier,
		Logger:        logger.Named("itinerary"),
		PresignExpiry: cfg.ExportURLExpiry,
	})
	tracker := service.NewGenerationTracker(itineraryService, service.TrackerOptions{
		Timeout: cfg.ItineraryTimeout,
		Logger:  logger.Named("jobs"),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.Named("http")))
	e.Use(middlewarepkg.Metrics())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		Users:       handler.NewUserAdminHandler(userService),
		Companies:   handler.NewCompaniesHandler(companiesService),
		AdminUpload: handler.NewAdminUploadHandler(companiesService),
		Directory:   handler.NewDirectoryHandler(numbersService, profilesService, rolesService),
		Itinerary:   handler.NewItineraryHandler(delegationService, tracker, itineraryService).WithLogger(logger.Named("itinerary")),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port), zap.String("blob_driver", string(store.Driver())))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := tracker.Wait(shutdownCtx); err != nil {
		logger.Warn("itinerary jobs still running at shutdown", zap.Error(err))
	}
}
