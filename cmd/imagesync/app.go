package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/adapter/httpdownload"
	"github.com/user/catalog-image-sync/internal/adapter/jsonfile"
	"github.com/user/catalog-image-sync/internal/adapter/pexels"
	"github.com/user/catalog-image-sync/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-image-sync/internal/adapter/redis"
	"github.com/user/catalog-image-sync/internal/adapter/s3mirror"
	"github.com/user/catalog-image-sync/internal/config"
	"github.com/user/catalog-image-sync/internal/delivery/http/handler"
	"github.com/user/catalog-image-sync/internal/proxy"
	"github.com/user/catalog-image-sync/internal/repository"
	"github.com/user/catalog-image-sync/internal/usecase"
	"github.com/user/catalog-image-sync/pkg/logger"
	"github.com/user/catalog-image-sync/pkg/metrics"
)

// app holds the wired components shared by the run and serve commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	syncer  usecase.ImageSyncer
	results repository.ResultRepository
	checks  map[string]handler.Pinger
	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	// --- Configuration ---
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return nil, err
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.New(),
		checks:  make(map[string]handler.Pinger),
	}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if !pexels.HasUsableKey(cfg.PexelsAPIKey) {
		log.Warn("PEXELS_API_KEY is not set; every image search will fail and existing image URLs are kept")
	}

	// --- Outbound HTTP ---
	proxies, err := proxy.NewManager(cfg.HTTPProxies, cfg.UserAgents)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid proxy configuration: %w", err)
	}
	httpClient := proxies.HTTPClient(cfg.HTTPTimeout())

	var finder repository.ImageFinder = pexels.NewClient(cfg.PexelsAPIKey,
		pexels.WithHTTPClient(httpClient),
		pexels.WithBaseURL(cfg.PexelsBaseURL),
		pexels.WithOrientation(cfg.SearchOrientation),
		pexels.WithImageSize(cfg.ImageSize),
	)
	downloader := httpdownload.NewDownloader(httpClient, proxies)

	opts := []usecase.SyncOption{
		usecase.WithMetrics(a.metrics),
		usecase.WithWorkers(cfg.SyncWorkers),
	}

	// --- Optional backends ---
	if cfg.RedisAddr != "" && pexels.HasUsableKey(cfg.PexelsAPIKey) {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache := redis_adapter.NewSearchCache(rdb, "orientation="+cfg.SearchOrientation+";size="+cfg.ImageSize)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("Redis unavailable, search cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			log.Info("Redis search cache enabled", zap.String("addr", cfg.RedisAddr))
			finder = usecase.NewCachedImageFinder(finder, cache, cfg.SearchCacheTTL(), log)
			a.checks["redis"] = cache
			a.closers = append(a.closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.PostgresURL != "" {
		if repo, pool, err := connectLedger(ctx, cfg.PostgresURL); err != nil {
			log.Warn("PostgreSQL unavailable, result ledger disabled", zap.Error(err))
		} else {
			log.Info("PostgreSQL result ledger enabled")
			opts = append(opts, usecase.WithResultRepository(repo))
			a.results = repo
			a.checks["postgres"] = repo
			a.closers = append(a.closers, pool.Close)
		}
	}

	if cfg.S3Bucket != "" {
		mirror, err := s3mirror.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Warn("S3 mirror disabled", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
		} else {
			log.Info("S3 mirror enabled", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
			opts = append(opts, usecase.WithMirror(mirror))
		}
	}

	// --- Use Case ---
	catalog := jsonfile.NewCatalogFile(cfg.ProductsFile)
	a.syncer = usecase.NewImageSyncer(catalog, finder, downloader, cfg.ImagesDir, log, opts...)
	return a, nil
}

func connectLedger(ctx context.Context, url string) (*postgres.ResultRepoImpl, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.NewResultRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool, nil
}

// Close releases backend connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
