package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/cache"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/db"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/queue"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/seed"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/storage"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default), 'seed' (load the sample catalog and exit)")

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			zap.L().Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := db.EnsureIndexes(ctx, mongoDb); err != nil {
		return err
	}

	if cfg.RunMode == "seed" {
		return seedCatalog(ctx, mongoDb)
	}

	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			zap.L().Error("Error disconnecting from Redis", zap.Error(err))
		}
	}()

	var pg *sqlx.DB
	if cfg.DatabaseURL != "" {
		if pg, err = db.ConnectPostgres(cfg.DatabaseURL); err != nil {
			return err
		}
		defer func() {
			if err := db.DisconnectPostgres(pg); err != nil {
				zap.L().Error("Error disconnecting from Postgres", zap.Error(err))
			}
		}()
	} else {
		zap.L().Warn("DATABASE_URL is not set, property info is disabled")
	}

	var s3StorageService storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		if s3StorageService, err = storage.NewS3Storage(cfg); err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		zap.L().Warn("AWS_S3_BUCKET is not set, photo uploads are disabled")
	}

	taskClient := queue.NewClient(redisClient)
	defer func() { _ = taskClient.Close() }()

	var catalog services.IPropertyRepository
	if cfg.CatalogBackend == config.CatalogSeed {
		props, err := seed.Properties()
		if err != nil {
			return err
		}
		catalog = services.NewMemoryPropertyRepository(props)
		zap.L().Info("serving the built-in sample catalog", zap.Int("properties", len(props)))
	} else {
		catalog = services.NewMongoPropertyRepository(mongoDb)
	}

	var searchCache cache.ISearchCache
	if cfg.SearchCacheTTL > 0 {
		searchCache = cache.NewSearchCache(redisClient, cfg.SearchCacheTTL)
	}

	propertyService := services.NewPropertyService(catalog, searchCache, cfg)
	userService, err := services.NewUserService(mongoDb, cfg)
	if err != nil {
		return err
	}
	favoriteService := services.NewFavoriteService(mongoDb, catalog)
	listingService := services.NewListingService(catalog, propertyService, s3StorageService, taskClient)
	var propertyInfoService services.IPropertyInfoService
	if pg != nil {
		propertyInfoService = services.NewPropertyInfoService(services.NewSQLPropertyInfoRepository(pg), catalog, taskClient)
	}
	svc := api.Services{
		Properties:   propertyService,
		Users:        userService,
		Favorites:    favoriteService,
		Comparisons:  services.NewComparisonService(favoriteService),
		Listings:     listingService,
		Dashboard:    services.NewDashboardService(listingService, favoriteService),
		PropertyInfo: propertyInfoService,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(propertyService, shutdownChan),
	}
	g.Go(func() error { return listen("Service API", serviceSrv) })

	var mainApiSrv *http.Server
	var taskSrv *asynq.Server

	zap.L().Info("Starting application", zap.String("mode", cfg.RunMode))

	apiMode := func() {
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: api.SetupRouter(gctx, cfg, svc),
		}
		g.Go(func() error { return listen("Main API", mainApiSrv) })
	}

	// Start rather than Run: Run waits for OS signals itself and would
	// ignore a shutdown requested through the service API.
	bgMode := func() error {
		processor := tasks.NewTaskProcessor(cfg, s3StorageService, listingService, propertyInfoService)
		srv, mux := tasks.SetupServer(redisClient, processor)
		zap.L().Info("Background task server starting")
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("background task server: %w", err)
		}
		taskSrv = srv
		return nil
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		err = bgMode()
	case "all":
		apiMode()
		err = bgMode()
	default:
		err = fmt.Errorf("invalid run mode: %s", cfg.RunMode)
	}
	if err != nil {
		stop()
	}

	// --- Graceful Shutdown ---
	g.Go(func() error {
		select {
		case <-gctx.Done():
			zap.L().Info("Shutting down gracefully")
		case <-shutdownChan:
			zap.L().Info("Shutdown requested via Service API")
		}

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
			zap.L().Error("Service API server shutdown error", zap.Error(err))
		}
		if mainApiSrv != nil {
			if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
				zap.L().Error("Main API server shutdown error", zap.Error(err))
			}
		}
		if taskSrv != nil {
			taskSrv.Shutdown()
		}
		stop()
		return nil
	})

	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}
	if err != nil {
		return err
	}
	zap.L().Info("Server gracefully stopped")
	return nil
}

func listen(name string, srv *http.Server) error {
	zap.L().Info(name+" listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	zap.L().Info(name + " server stopped")
	return nil
}

// seedCatalog upserts the built-in sample properties into Mongo.
func seedCatalog(ctx context.Context, mongoDb *mongo.Database) error {
	props, err := seed.Properties()
	if err != nil {
		return err
	}
	repo := services.NewMongoPropertyRepository(mongoDb)
	for i := range props {
		if err := repo.Upsert(ctx, &props[i]); err != nil {
			return fmt.Errorf("failed to seed property %d: %w", props[i].ID, err)
		}
	}
	zap.L().Info("catalog seeded", zap.Int("properties", len(props)))
	return nil
}
