package api

import (
	"os"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/db"
	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/services"
)

type Repositories struct {
	Catalog repositories.CatalogRepository
	History *repositories.ImportHistoryRepo
}

type Services struct {
	Cache        common.CacheInterface
	Locker       common.ImportLocker
	ExportSigner *common.ExportLinkSigner
	Diff         *services.DiffService
	Validation   *services.ValidationService
	Snapshots    *services.SnapshotService
	Reviews      *services.ReviewService
	Executor     *services.ImportExecutor
	Rollback     *services.RollbackService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories and services. Redis backs the review
// cache and the import lock when configured; otherwise the single-node
// in-memory implementations serve.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Catalog: repositories.NewCatalogRepository(db.DB),
		History: repositories.NewImportHistoryRepo(db.PgDB),
	}

	var cacheSvc common.CacheInterface
	var locker common.ImportLocker
	if os.Getenv("REDIS_HOST") != "" {
		client := common.NewRedisClient()
		cacheSvc = common.NewRedisCacheService(client)
		locker = common.NewRedisImportLock(client)
	} else {
		logging.Warn("REDIS_HOST not set, using in-memory review cache and import lock")
		cacheSvc = common.NewCacheService(1800, 600)
		locker = common.NewMemoryImportLock()
	}

	signingKey := os.Getenv("EXPORT_SIGNING_KEY")
	if signingKey == "" {
		logging.Warn("EXPORT_SIGNING_KEY not set, using development default")
		signingKey = "catalogd-dev-signing-key"
	}

	snapshots := services.NewSnapshotService(repos.Catalog, repos.History, metricsReg)
	reviews := services.NewReviewService(cacheSvc)

	svcs := &Services{
		Cache:        cacheSvc,
		Locker:       locker,
		ExportSigner: common.NewExportLinkSigner([]byte(signingKey), cacheSvc),
		Diff:         services.NewDiffService(repos.Catalog, metricsReg),
		Validation:   services.NewValidationService(metricsReg),
		Snapshots:    snapshots,
		Reviews:      reviews,
		Executor:     services.NewImportExecutor(repos.Catalog, repos.History, snapshots, reviews, locker, metricsReg),
		Rollback:     services.NewRollbackService(repos.Catalog, repos.History, locker, metricsReg),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}
