package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"
	gormModels "apexparts/catalogd/internal/models/gorm"
)

// SnapshotService captures full governed-table contents and persists them as
// the rollback anchor for an import.
type SnapshotService struct {
	repo    repositories.CatalogRepository
	history *repositories.ImportHistoryRepo
	metrics *metrics.MetricsRegistry
}

func NewSnapshotService(repo repositories.CatalogRepository, history *repositories.ImportHistoryRepo, reg *metrics.MetricsRegistry) *SnapshotService {
	return &SnapshotService{repo: repo, history: history, metrics: reg}
}

// Capture reads the full current contents of every governed table. It runs
// synchronously immediately before the apply mutates the same tables; it is
// never deferred.
func (s *SnapshotService) Capture(ctx context.Context) (*entities.ImportSnapshot, error) {
	store, err := fetchStore(ctx, s.repo)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	snap := &entities.ImportSnapshot{
		Parts:           store.Parts,
		Applications:    store.Applications,
		CrossReferences: store.CrossReferences,
		Aliases:         store.Aliases,
		CapturedAt:      time.Now().UTC(),
	}

	if s.metrics != nil {
		s.metrics.SnapshotSizeRows.Set(float64(
			len(snap.Parts) + len(snap.Applications) + len(snap.CrossReferences) + len(snap.Aliases)))
	}
	return snap, nil
}

// Persist writes the immutable history record embedding the snapshot and
// returns the import id. The summary and execution time are finalized by the
// executor once the apply succeeds.
func (s *SnapshotService) Persist(ctx context.Context, snap *entities.ImportSnapshot, file dtos.FileMeta) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}

	importID, err := s.history.Create(ctx, &gormModels.ImportHistory{
		FileName: file.FileName,
		FileSize: file.FileSize,
		Snapshot: payload,
	})
	if err != nil {
		return "", fmt.Errorf("persist snapshot: %w", err)
	}

	logging.Info("Import snapshot persisted",
		"import_id", importID,
		"parts", len(snap.Parts),
		"applications", len(snap.Applications),
		"cross_references", len(snap.CrossReferences),
		"aliases", len(snap.Aliases),
	)
	return importID, nil
}
