package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/catalog-image-sync/internal/entity"
	"github.com/user/catalog-image-sync/internal/repository"
	"github.com/user/catalog-image-sync/pkg/metrics"
)

const imageContentType = "image/jpeg"

var errProductWithoutName = errors.New("product has no name")

// ImageSyncer runs the catalog image sync job.
type ImageSyncer interface {
	// Sync processes every product of the catalog and rewrites the catalog.
	// Per-product lookup and download failures are recorded in the report;
	// catalog and filesystem errors abort the run and are returned.
	Sync(ctx context.Context) (*entity.SyncReport, error)
}

type imageSyncUseCase struct {
	catalogRepo repository.CatalogRepository
	finder      repository.ImageFinder
	downloader  repository.ImageDownloader
	resultRepo  repository.ResultRepository
	mirror      repository.ImageMirror
	metrics     *metrics.Metrics
	logger      *zap.Logger
	imagesDir   string
	workers     int
	now         func() time.Time
}

// SyncOption configures optional collaborators of the sync use case.
type SyncOption func(*imageSyncUseCase)

// WithResultRepository records every per-product outcome.
func WithResultRepository(repo repository.ResultRepository) SyncOption {
	return func(uc *imageSyncUseCase) { uc.resultRepo = repo }
}

// WithMirror copies every freshly downloaded image to secondary storage.
func WithMirror(mirror repository.ImageMirror) SyncOption {
	return func(uc *imageSyncUseCase) { uc.mirror = mirror }
}

func WithMetrics(m *metrics.Metrics) SyncOption {
	return func(uc *imageSyncUseCase) { uc.metrics = m }
}

// WithWorkers processes up to n products at once. The default of 1 keeps
// catalog order for logs as well as for the output.
func WithWorkers(n int) SyncOption {
	return func(uc *imageSyncUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// NewImageSyncer creates a new instance of the image sync use case.
func NewImageSyncer(
	catalogRepo repository.CatalogRepository,
	finder repository.ImageFinder,
	downloader repository.ImageDownloader,
	imagesDir string,
	logger *zap.Logger,
	opts ...SyncOption,
) ImageSyncer {
	uc := &imageSyncUseCase{
		catalogRepo: catalogRepo,
		finder:      finder,
		downloader:  downloader,
		logger:      logger,
		imagesDir:   imagesDir,
		workers:     1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.metrics == nil {
		uc.metrics = metrics.New()
	}
	return uc
}

func (uc *imageSyncUseCase) Sync(ctx context.Context) (*entity.SyncReport, error) {
	report := &entity.SyncReport{
		RunID:        uuid.NewString(),
		ProductsFile: uc.catalogRepo.Location(),
		ImagesDir:    uc.imagesDir,
		StartedAt:    uc.now(),
	}
	log := uc.logger.With(zap.String("run_id", report.RunID))

	if err := os.MkdirAll(uc.imagesDir, 0o755); err != nil {
		uc.metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to create images directory %s: %w", uc.imagesDir, err)
	}

	catalog, err := uc.catalogRepo.Load(ctx)
	if err != nil {
		uc.metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	log.Info("Starting image sync",
		zap.String("products_file", report.ProductsFile),
		zap.String("images_dir", uc.imagesDir),
		zap.Int("products", len(catalog.Products)),
		zap.Int("workers", uc.workers),
	)

	results, err := uc.processAll(ctx, log, report.RunID, catalog.Products)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		uc.metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("sync aborted, catalog not updated: %w", err)
	}

	if err := uc.catalogRepo.Save(ctx, catalog); err != nil {
		uc.metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	for _, res := range results {
		report.Add(res)
	}
	report.FinishedAt = uc.now()
	uc.metrics.SyncRunsTotal.WithLabelValues("completed").Inc()

	log.Info("Image sync complete",
		zap.Int("products", report.Total),
		zap.Int("success", report.Success),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("errors", report.Errors),
		zap.String("products_file", report.ProductsFile),
		zap.String("images_dir", report.ImagesDir),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// processAll runs processProduct for every product, sequentially or on a
// bounded pool. Results are indexed like the products slice.
func (uc *imageSyncUseCase) processAll(ctx context.Context, log *zap.Logger, runID string, products []*entity.Product) ([]entity.SyncResult, error) {
	results := make([]entity.SyncResult, len(products))

	if uc.workers <= 1 {
		for i, p := range products {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := uc.processProduct(ctx, log, runID, p)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, p := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := uc.processProduct(gctx, log, runID, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processProduct ensures one product has a local image. The returned error is
// only set for filesystem failures that must stop the whole run.
func (uc *imageSyncUseCase) processProduct(ctx context.Context, log *zap.Logger, runID string, p *entity.Product) (entity.SyncResult, error) {
	name := p.Name()
	category := p.CategoryName()
	localPath := entity.ImagePath(uc.imagesDir, name, category)
	publicPath := entity.PublicPath(localPath)
	originalURL, _ := p.ImageURL()

	res := entity.SyncResult{
		RunID:       runID,
		ProductID:   p.ID(),
		ProductName: name,
		LocalPath:   localPath,
		ImageURL:    originalURL,
	}
	log = log.With(zap.String("product_id", res.ProductID), zap.String("name", name))

	if name == "" {
		res.Status = entity.StatusFailed
		res.Error = errProductWithoutName.Error()
		log.Warn("FAILED: product has no name, leaving it unchanged")
		uc.finish(ctx, log, &res)
		return res, nil
	}

	// MkdirAll tolerates the directory being created concurrently.
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return res, fmt.Errorf("failed to create category directory for product %s: %w", res.ProductID, err)
	}

	log.Debug("Processing product", zap.String("path", localPath))

	exists, err := fileExists(localPath)
	if err != nil {
		return res, fmt.Errorf("failed to check image for product %s: %w", res.ProductID, err)
	}
	if exists {
		p.SetImageURL(publicPath)
		res.ImageURL = publicPath
		res.Status = entity.StatusSkipped
		log.Info("SKIPPED: image already exists", zap.String("path", localPath))
		uc.finish(ctx, log, &res)
		return res, nil
	}

	res.Query = entity.SearchQuery(name, category)
	imageURL, err := uc.finder.FindImage(ctx, res.Query)
	if err != nil {
		res.Status = entity.StatusFailed
		res.Error = err.Error()
		switch {
		case errors.Is(err, repository.ErrNoImageFound):
			uc.metrics.IncSearch("not_found")
			log.Warn("FAILED: no image found", zap.String("query", res.Query))
		case errors.Is(err, repository.ErrMissingAPIKey):
			uc.metrics.IncSearch("error")
			log.Error("FAILED: image search API key is not set", zap.String("query", res.Query))
		default:
			uc.metrics.IncSearch("error")
			log.Error("FAILED: error fetching image", zap.String("query", res.Query), zap.Error(err))
		}
		uc.finish(ctx, log, &res)
		return res, nil
	}
	uc.metrics.IncSearch("found")
	res.SourceURL = imageURL

	start := time.Now()
	n, err := uc.downloader.Download(ctx, imageURL, localPath)
	uc.metrics.ObserveDownload(time.Since(start).Seconds(), n)
	if err != nil {
		// The prior catalog reference is kept; the found URL is only recorded in the result.
		res.Status = entity.StatusError
		res.Error = err.Error()
		log.Error("ERROR: could not download image", zap.String("url", imageURL), zap.Error(err))
		uc.finish(ctx, log, &res)
		return res, nil
	}

	p.SetImageURL(publicPath)
	res.ImageURL = publicPath
	res.Status = entity.StatusSuccess
	log.Info("SUCCESS: downloaded image", zap.String("path", localPath), zap.Int64("bytes", n))
	uc.mirrorImage(ctx, log, localPath)
	uc.finish(ctx, log, &res)
	return res, nil
}

// finish stamps the result, counts it and stores it in the ledger if one is configured.
func (uc *imageSyncUseCase) finish(ctx context.Context, log *zap.Logger, res *entity.SyncResult) {
	res.ProcessedAt = uc.now()
	uc.metrics.IncProduct(string(res.Status))

	if uc.resultRepo == nil {
		return
	}
	if err := uc.resultRepo.Save(ctx, res); err != nil {
		// Not critical, the catalog is still rewritten.
		log.Warn("Failed to record sync result", zap.Error(err))
	}
}

func (uc *imageSyncUseCase) mirrorImage(ctx context.Context, log *zap.Logger, localPath string) {
	if uc.mirror == nil {
		return
	}

	key, err := filepath.Rel(uc.imagesDir, localPath)
	if err != nil {
		key = filepath.Base(localPath)
	}
	f, err := os.Open(localPath)
	if err != nil {
		log.Warn("Failed to open image for mirroring", zap.String("path", localPath), zap.Error(err))
		return
	}
	defer f.Close()

	if err := uc.mirror.Put(ctx, filepath.ToSlash(key), f, imageContentType); err != nil {
		log.Warn("Failed to mirror image", zap.String("key", key), zap.Error(err))
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
