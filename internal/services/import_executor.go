package services

import (
	"context"
	"fmt"
	"time"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"

	"github.com/google/uuid"
)

const (
	// defaultApplyTimeout bounds one apply or rollback end to end.
	defaultApplyTimeout = 5 * time.Minute
	// importLockTTL outlives the timeout so a crashed holder cannot wedge
	// the lock forever, but a healthy one never loses it mid-apply.
	importLockTTL = 10 * time.Minute
)

// ImportExecutor orchestrates one apply: snapshot capture, the validation
// gate, the ordered writes, and the history finalize. It does not assume the
// store can roll back multiple tables natively; the snapshot persisted up
// front is the recovery path if any later stage fails.
type ImportExecutor struct {
	repo      repositories.CatalogRepository
	history   *repositories.ImportHistoryRepo
	snapshots *SnapshotService
	reviews   *ReviewService
	locker    common.ImportLocker
	metrics   *metrics.MetricsRegistry
	timeout   time.Duration
}

func NewImportExecutor(
	repo repositories.CatalogRepository,
	history *repositories.ImportHistoryRepo,
	snapshots *SnapshotService,
	reviews *ReviewService,
	locker common.ImportLocker,
	reg *metrics.MetricsRegistry,
) *ImportExecutor {
	return &ImportExecutor{
		repo:      repo,
		history:   history,
		snapshots: snapshots,
		reviews:   reviews,
		locker:    locker,
		metrics:   reg,
		timeout:   defaultApplyTimeout,
	}
}

// Apply executes a reviewed import. It requires a valid validation result
// and, when warnings exist, the caller's explicit acknowledgment.
func (e *ImportExecutor) Apply(ctx context.Context, reviewID string, acknowledged bool) (*dtos.ImportResult, error) {
	session, err := e.reviews.Get(reviewID)
	if err != nil {
		return nil, err
	}
	if session.State != dtos.StateReviewing {
		return nil, &InvalidStateError{State: session.State}
	}
	if session.Validation == nil || !session.Validation.Valid {
		return nil, ErrImportNotApplicable
	}
	if len(session.Validation.Warnings) > 0 && !acknowledged {
		return nil, ErrAcknowledgmentRequired
	}

	release, err := e.locker.Acquire(ctx, "apply:"+reviewID, importLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if _, err := e.reviews.Transition(reviewID, dtos.StateExecuting, dtos.StageSnapshot, ""); err != nil {
		return nil, err
	}

	started := time.Now()

	// The snapshot is the rollback anchor; it must exist before any write,
	// even if a later stage fails.
	snap, err := e.snapshots.Capture(ctx)
	if err != nil {
		return nil, e.fail(reviewID, dtos.StageSnapshot, "", err)
	}
	importID, err := e.snapshots.Persist(ctx, snap, session.File)
	if err != nil {
		return nil, e.fail(reviewID, dtos.StageSnapshot, "", err)
	}
	e.observeStage(dtos.StageSnapshot, started)

	e.reviews.SetStage(reviewID, dtos.StageValidate)
	if !session.Validation.Valid {
		return nil, e.fail(reviewID, dtos.StageValidate, importID, ErrImportNotApplicable)
	}

	e.reviews.SetStage(reviewID, dtos.StageApply)
	applyStart := time.Now()
	if err := e.applyDiff(ctx, session.Diff); err != nil {
		return nil, e.fail(reviewID, dtos.StageApply, importID, err)
	}
	e.observeStage(dtos.StageApply, applyStart)

	e.reviews.SetStage(reviewID, dtos.StageHistory)
	elapsed := time.Since(started).Milliseconds()
	if err := e.history.UpdateSummary(ctx, importID, session.Diff.Summary, elapsed); err != nil {
		return nil, e.fail(reviewID, dtos.StageHistory, importID, err)
	}

	if _, err := e.reviews.Transition(reviewID, dtos.StateSucceeded, dtos.StageHistory, importID); err != nil {
		logging.Warn("Import applied but session transition failed", "review_id", reviewID, "error", err.Error())
	}
	if e.metrics != nil {
		e.metrics.ImportsAppliedTotal.WithLabelValues("succeeded").Inc()
	}
	logging.WithImport(reviewID, importID).Infow("Import applied",
		"total_adds", session.Diff.Summary.TotalAdds,
		"total_updates", session.Diff.Summary.TotalUpdates,
		"total_deletes", session.Diff.Summary.TotalDeletes,
		"execution_ms", elapsed,
	)

	return &dtos.ImportResult{
		ImportID:        importID,
		Summary:         session.Diff.Summary,
		ExecutionTimeMs: elapsed,
	}, nil
}

func (e *ImportExecutor) fail(reviewID string, stage dtos.ImportStage, importID string, err error) error {
	if _, terr := e.reviews.Transition(reviewID, dtos.StateFailed, stage, importID); terr != nil {
		logging.Warn("Failed import session transition failed", "review_id", reviewID, "error", terr.Error())
	}
	if e.metrics != nil {
		e.metrics.ImportsAppliedTotal.WithLabelValues("failed").Inc()
	}
	logging.WithImport(reviewID, importID).Errorw("Import failed", "stage", string(stage), "error", err.Error())
	return &ExecutionError{Stage: stage, ImportID: importID, Err: err}
}

func (e *ImportExecutor) observeStage(stage dtos.ImportStage, since time.Time) {
	if e.metrics != nil {
		e.metrics.ImportStageDuration.WithLabelValues(string(stage)).Observe(time.Since(since).Seconds())
	}
}

// applyDiff writes the change-set in dependency order: part adds/updates
// first so children can reference new parents, child deletes before part
// deletes so no dangling FK exists mid-apply.
func (e *ImportExecutor) applyDiff(ctx context.Context, diff *dtos.DiffResult) error {
	now := time.Now().UTC()

	partAdds := make([]entities.PartRecord, 0, len(diff.Parts.Adds))
	for _, item := range diff.Parts.Adds {
		p := item.Row
		p.ID = uuid.New().String()
		p.CreatedAt = now
		p.UpdatedAt = now
		partAdds = append(partAdds, p)
	}
	if err := e.repo.BulkInsertParts(ctx, partAdds); err != nil {
		return fmt.Errorf("insert parts: %w", err)
	}
	e.countRows("parts", "insert", len(partAdds))

	partUpdates := make([]entities.PartRecord, 0, len(diff.Parts.Updates))
	for _, item := range diff.Parts.Updates {
		p := item.Row
		p.UpdatedAt = now
		partUpdates = append(partUpdates, p)
	}
	if err := e.repo.BulkUpdateParts(ctx, partUpdates); err != nil {
		return fmt.Errorf("update parts: %w", err)
	}
	e.countRows("parts", "update", len(partUpdates))

	// Post-apply business-key index, so child rows can reference parts that
	// were only just assigned ids.
	skuToID := make(map[string]string)
	for _, p := range partAdds {
		skuToID[Canon(p.SKU)] = p.ID
	}
	for _, item := range diff.Parts.Updates {
		skuToID[Canon(item.Row.SKU)] = item.Row.ID
	}
	for _, item := range diff.Parts.Unchanged {
		skuToID[Canon(item.Row.SKU)] = item.Row.ID
	}

	if err := e.applyApplications(ctx, diff, skuToID, now); err != nil {
		return err
	}
	if err := e.applyCrossReferences(ctx, diff, skuToID, now); err != nil {
		return err
	}
	if err := e.applyAliases(ctx, diff, now); err != nil {
		return err
	}

	return e.applyDeletes(ctx, diff)
}

func (e *ImportExecutor) applyApplications(ctx context.Context, diff *dtos.DiffResult, skuToID map[string]string, now time.Time) error {
	adds := make([]entities.VehicleApplication, 0, len(diff.Applications.Adds))
	for _, item := range diff.Applications.Adds {
		a := item.Row
		a.ID = uuid.New().String()
		a.CreatedAt = now
		a.UpdatedAt = now
		var err error
		a.PartID, err = resolvePart(skuToID, a.PartSKU, a.PartID)
		if err != nil {
			return fmt.Errorf("vehicle application %s %s: %w", a.Make, a.Model, err)
		}
		adds = append(adds, a)
	}
	if err := e.repo.BulkInsertApplications(ctx, adds); err != nil {
		return fmt.Errorf("insert vehicle applications: %w", err)
	}
	e.countRows("applications", "insert", len(adds))

	updates := make([]entities.VehicleApplication, 0, len(diff.Applications.Updates))
	for _, item := range diff.Applications.Updates {
		a := item.Row
		a.UpdatedAt = now
		var err error
		a.PartID, err = resolvePart(skuToID, a.PartSKU, a.PartID)
		if err != nil {
			return fmt.Errorf("vehicle application %s %s: %w", a.Make, a.Model, err)
		}
		updates = append(updates, a)
	}
	if err := e.repo.BulkUpdateApplications(ctx, updates); err != nil {
		return fmt.Errorf("update vehicle applications: %w", err)
	}
	e.countRows("applications", "update", len(updates))
	return nil
}

func (e *ImportExecutor) applyCrossReferences(ctx context.Context, diff *dtos.DiffResult, skuToID map[string]string, now time.Time) error {
	adds := make([]entities.CrossReference, 0, len(diff.CrossReferences.Adds))
	for _, item := range diff.CrossReferences.Adds {
		x := item.Row
		x.ID = uuid.New().String()
		x.CreatedAt = now
		x.UpdatedAt = now
		var err error
		x.PartID, err = resolvePart(skuToID, x.PartSKU, x.PartID)
		if err != nil {
			return fmt.Errorf("cross reference %s %s: %w", x.CompetitorBrand, x.CompetitorSKU, err)
		}
		adds = append(adds, x)
	}
	if err := e.repo.BulkInsertCrossReferences(ctx, adds); err != nil {
		return fmt.Errorf("insert cross references: %w", err)
	}
	e.countRows("cross_references", "insert", len(adds))

	updates := make([]entities.CrossReference, 0, len(diff.CrossReferences.Updates))
	for _, item := range diff.CrossReferences.Updates {
		x := item.Row
		x.UpdatedAt = now
		var err error
		x.PartID, err = resolvePart(skuToID, x.PartSKU, x.PartID)
		if err != nil {
			return fmt.Errorf("cross reference %s %s: %w", x.CompetitorBrand, x.CompetitorSKU, err)
		}
		updates = append(updates, x)
	}
	if err := e.repo.BulkUpdateCrossReferences(ctx, updates); err != nil {
		return fmt.Errorf("update cross references: %w", err)
	}
	e.countRows("cross_references", "update", len(updates))
	return nil
}

func (e *ImportExecutor) applyAliases(ctx context.Context, diff *dtos.DiffResult, now time.Time) error {
	adds := make([]entities.VehicleAlias, 0, len(diff.Aliases.Adds))
	for _, item := range diff.Aliases.Adds {
		a := item.Row
		a.ID = uuid.New().String()
		a.CreatedAt = now
		a.UpdatedAt = now
		adds = append(adds, a)
	}
	if err := e.repo.BulkInsertAliases(ctx, adds); err != nil {
		return fmt.Errorf("insert aliases: %w", err)
	}
	e.countRows("aliases", "insert", len(adds))

	updates := make([]entities.VehicleAlias, 0, len(diff.Aliases.Updates))
	for _, item := range diff.Aliases.Updates {
		a := item.Row
		a.UpdatedAt = now
		updates = append(updates, a)
	}
	if err := e.repo.BulkUpdateAliases(ctx, updates); err != nil {
		return fmt.Errorf("update aliases: %w", err)
	}
	e.countRows("aliases", "update", len(updates))
	return nil
}

// applyDeletes removes children before parents. Dependents of deleted parts
// are folded in even when their own classification missed them, so no
// dangling reference survives the apply.
func (e *ImportExecutor) applyDeletes(ctx context.Context, diff *dtos.DiffResult) error {
	deletedParts := make(map[string]bool, len(diff.Parts.Deletes))
	partIDs := make([]string, 0, len(diff.Parts.Deletes))
	for _, item := range diff.Parts.Deletes {
		deletedParts[Canon(item.Row.ID)] = true
		partIDs = append(partIDs, item.Row.ID)
	}

	appIDs := make(map[string]bool)
	for _, item := range diff.Applications.Deletes {
		appIDs[item.Row.ID] = true
	}
	for _, app := range storeApplications(diff) {
		if deletedParts[Canon(app.PartID)] {
			appIDs[app.ID] = true
		}
	}

	xrefIDs := make(map[string]bool)
	for _, item := range diff.CrossReferences.Deletes {
		xrefIDs[item.Row.ID] = true
	}
	for _, x := range storeCrossReferences(diff) {
		if deletedParts[Canon(x.PartID)] {
			xrefIDs[x.ID] = true
		}
	}

	aliasIDs := make([]string, 0, len(diff.Aliases.Deletes))
	for _, item := range diff.Aliases.Deletes {
		aliasIDs = append(aliasIDs, item.Row.ID)
	}

	if err := e.repo.BulkDeleteCrossReferences(ctx, keys(xrefIDs)); err != nil {
		return fmt.Errorf("delete cross references: %w", err)
	}
	e.countRows("cross_references", "delete", len(xrefIDs))

	if err := e.repo.BulkDeleteApplications(ctx, keys(appIDs)); err != nil {
		return fmt.Errorf("delete vehicle applications: %w", err)
	}
	e.countRows("applications", "delete", len(appIDs))

	if err := e.repo.BulkDeleteAliases(ctx, aliasIDs); err != nil {
		return fmt.Errorf("delete aliases: %w", err)
	}
	e.countRows("aliases", "delete", len(aliasIDs))

	if err := e.repo.BulkDeleteParts(ctx, partIDs); err != nil {
		return fmt.Errorf("delete parts: %w", err)
	}
	e.countRows("parts", "delete", len(partIDs))
	return nil
}

func (e *ImportExecutor) countRows(entity, operation string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.ImportRowsWritten.WithLabelValues(entity, operation).Add(float64(n))
	}
}

// resolvePart maps a child row to its parent part id. Validation guarantees
// the SKU resolves for applicable imports; hitting the error here means the
// diff was applied against a store that moved underneath it.
func resolvePart(skuToID map[string]string, sku, existing string) (string, error) {
	if id, ok := skuToID[Canon(sku)]; ok {
		return id, nil
	}
	if Canon(existing) != "" {
		return existing, nil
	}
	return "", fmt.Errorf("cannot resolve part SKU %q", Canon(sku))
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
