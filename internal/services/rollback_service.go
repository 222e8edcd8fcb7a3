package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/models/entities"
)

// RollbackService restores governed tables from a previously captured
// snapshot and consumes it. A snapshot is single-use: the second rollback of
// the same import fails with ErrSnapshotNotFound.
type RollbackService struct {
	repo    repositories.CatalogRepository
	history *repositories.ImportHistoryRepo
	locker  common.ImportLocker
	metrics *metrics.MetricsRegistry
	timeout time.Duration
}

func NewRollbackService(repo repositories.CatalogRepository, history *repositories.ImportHistoryRepo, locker common.ImportLocker, reg *metrics.MetricsRegistry) *RollbackService {
	return &RollbackService{
		repo:    repo,
		history: history,
		locker:  locker,
		metrics: reg,
		timeout: defaultApplyTimeout,
	}
}

// RollbackToImport restores the store to the state captured just before the
// named import was applied.
func (s *RollbackService) RollbackToImport(ctx context.Context, importID string) error {
	release, err := s.locker.Acquire(ctx, "rollback:"+importID, importLockTTL)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.history.FindByID(ctx, importID)
	if err != nil {
		if errors.Is(err, repositories.ErrHistoryNotFound) {
			s.countOutcome("snapshot_not_found")
			return ErrSnapshotNotFound
		}
		return err
	}

	var snap entities.ImportSnapshot
	if err := json.Unmarshal(rec.Snapshot, &snap); err != nil {
		s.countOutcome("failed")
		return &RestoreError{Step: "decode snapshot", Err: err}
	}

	// Clear current contents in reverse dependency order, then reinsert the
	// snapshot in forward order. Any failure in the middle is loud: the
	// store may be half-restored and the operator has to know.
	steps := []struct {
		name string
		fn   func() error
	}{
		{"delete cross references", func() error { return s.repo.DeleteAllCrossReferences(ctx) }},
		{"delete vehicle applications", func() error { return s.repo.DeleteAllApplications(ctx) }},
		{"delete aliases", func() error { return s.repo.DeleteAllAliases(ctx) }},
		{"delete parts", func() error { return s.repo.DeleteAllParts(ctx) }},
		{"restore parts", func() error { return s.repo.BulkInsertParts(ctx, snap.Parts) }},
		{"restore vehicle applications", func() error { return s.repo.BulkInsertApplications(ctx, snap.Applications) }},
		{"restore cross references", func() error { return s.repo.BulkInsertCrossReferences(ctx, snap.CrossReferences) }},
		{"restore aliases", func() error { return s.repo.BulkInsertAliases(ctx, snap.Aliases) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			s.countOutcome("failed")
			logging.Error("Rollback step failed", "import_id", importID, "step", step.name, "error", err.Error())
			return &RestoreError{Step: step.name, Err: err}
		}
	}

	// Consume the snapshot so the same import cannot be rolled back twice.
	if err := s.history.Delete(ctx, importID); err != nil && !errors.Is(err, repositories.ErrHistoryNotFound) {
		s.countOutcome("failed")
		return &RestoreError{Step: "consume snapshot", Err: err}
	}

	s.countOutcome("succeeded")
	logging.Info("Import rolled back",
		"import_id", importID,
		"parts", len(snap.Parts),
		"applications", len(snap.Applications),
		"cross_references", len(snap.CrossReferences),
		"aliases", len(snap.Aliases),
	)
	return nil
}

func (s *RollbackService) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RollbacksTotal.WithLabelValues(outcome).Inc()
	}
}
