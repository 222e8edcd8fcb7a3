package services

import (
	"context"
	"errors"
	"testing"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"
	"apexparts/catalogd/internal/workbook"
)

// importTestEnv wires the full diff -> review -> apply pipeline over the
// in-memory repo and a sqlite-backed history store.
type importTestEnv struct {
	repo     *fakeCatalogRepo
	history  *repositories.ImportHistoryRepo
	diffs    *DiffService
	validate *ValidationService
	reviews  *ReviewService
	locker   *common.MemoryImportLock
	executor *ImportExecutor
	rollback *RollbackService
}

func newImportTestEnv(t *testing.T) *importTestEnv {
	repo := newFakeCatalogRepo()
	history := repositories.NewImportHistoryRepo(setupHistoryDB(t))
	snapshots := NewSnapshotService(repo, history, nil)
	reviews := NewReviewService(common.NewCacheService(1800, 600))
	locker := common.NewMemoryImportLock()

	return &importTestEnv{
		repo:     repo,
		history:  history,
		diffs:    NewDiffService(repo, nil),
		validate: NewValidationService(nil),
		reviews:  reviews,
		locker:   locker,
		executor: NewImportExecutor(repo, history, snapshots, reviews, locker, nil),
		rollback: NewRollbackService(repo, history, locker, nil),
	}
}

// openReview runs the diff and validation for a workbook and opens a session,
// the way the diff endpoint does.
func (env *importTestEnv) openReview(t *testing.T, wb *workbook.ParsedWorkbook) *dtos.ReviewSession {
	diff, err := env.diffs.Diff(context.Background(), wb)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	validation := env.validate.Validate(diff, wb)
	return env.reviews.Create(dtos.FileMeta{FileName: "catalog.xlsx", FileSize: 2048}, diff, validation)
}

func (env *importTestEnv) seedPart(id, sku, partType string) {
	env.repo.parts[id] = entities.PartRecord{ID: id, SKU: sku, PartType: partType, Status: "active"}
}

func (env *importTestEnv) seedApplication(id, partID string, mk, model string, start, end int) {
	env.repo.apps[id] = entities.VehicleApplication{ID: id, PartID: partID, Make: mk, Model: model, StartYear: start, EndYear: end}
}

const (
	partID1 = "11111111-1111-1111-1111-111111111111"
	partID2 = "22222222-2222-2222-2222-222222222222"
	appID1  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func TestImportExecutor_AppliesFullChangeSet(t *testing.T) {
	env := newImportTestEnv(t)
	env.seedPart(partID1, "BD-1001", "Disco")
	env.seedPart(partID2, "BD-1002", "Tambor")
	env.seedApplication(appID1, partID1, "VW", "Gol", 2010, 2015)

	// The file keeps BD-1001 and its application, adds BD-2000 with one
	// application, and omits BD-1002 so it is deleted.
	wb := &workbook.ParsedWorkbook{
		Parts: []dtos.FileRow[entities.PartRecord]{
			{RowNum: 4, Record: entities.PartRecord{ID: partID1, SKU: "BD-1001", PartType: "Disco", Status: "active"}},
			{RowNum: 5, Record: entities.PartRecord{SKU: "BD-2000", PartType: "Kit", Status: "active"}},
		},
		Applications: []dtos.FileRow[entities.VehicleApplication]{
			{RowNum: 4, Record: entities.VehicleApplication{ID: appID1, PartID: partID1, PartSKU: "BD-1001", Make: "VW", Model: "Gol", StartYear: 2010, EndYear: 2015}},
			{RowNum: 5, Record: entities.VehicleApplication{PartSKU: "BD-2000", Make: "Fiat", Model: "Uno", StartYear: 2012, EndYear: 2018}},
		},
	}

	session := env.openReview(t, wb)
	if !session.Validation.Valid {
		t.Fatalf("Scenario should validate cleanly, got %+v", session.Validation.Errors)
	}

	result, err := env.executor.Apply(context.Background(), session.ID, false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result.ImportID == "" {
		t.Fatal("Expected an import id")
	}
	if result.Summary.TotalAdds != 2 || result.Summary.TotalDeletes != 1 || result.Summary.TotalUpdates != 0 {
		t.Errorf("Unexpected summary: %+v", result.Summary)
	}

	if _, ok := env.repo.parts[partID2]; ok {
		t.Error("BD-1002 should have been deleted")
	}
	if len(env.repo.parts) != 2 {
		t.Errorf("Expected 2 parts after apply, got %d", len(env.repo.parts))
	}
	if len(env.repo.apps) != 2 {
		t.Errorf("Expected 2 applications after apply, got %d", len(env.repo.apps))
	}

	// The new application must point at the part added by the same import.
	var newPartID string
	for id, p := range env.repo.parts {
		if p.SKU == "BD-2000" {
			newPartID = id
		}
	}
	if newPartID == "" {
		t.Fatal("BD-2000 was not inserted")
	}
	found := false
	for _, a := range env.repo.apps {
		if a.Make == "Fiat" {
			found = true
			if a.PartID != newPartID {
				t.Errorf("New application must reference the new part id, got %q want %q", a.PartID, newPartID)
			}
		}
	}
	if !found {
		t.Error("New application was not inserted")
	}

	// History row finalized with the summary.
	rec, err := env.history.FindByID(context.Background(), result.ImportID)
	if err != nil {
		t.Fatalf("History row missing: %v", err)
	}
	if rec.TotalAdds != 2 || rec.TotalDeletes != 1 {
		t.Errorf("History totals not finalized: %+v", rec)
	}
	if len(rec.Snapshot) == 0 {
		t.Error("History row must embed the pre-import snapshot")
	}

	got, err := env.reviews.Get(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != dtos.StateSucceeded {
		t.Errorf("Session should be succeeded, got %q", got.State)
	}
	if got.ImportID != result.ImportID {
		t.Errorf("Session should record the import id, got %q", got.ImportID)
	}
}

func TestImportExecutor_DeletingPartRemovesDependents(t *testing.T) {
	env := newImportTestEnv(t)
	env.seedPart(partID1, "BD-1001", "Disco")
	env.seedApplication(appID1, partID1, "VW", "Gol", 2010, 2015)

	// Empty workbook: everything in the store is deleted.
	wb := &workbook.ParsedWorkbook{}
	session := env.openReview(t, wb)

	// The cascade produces warnings, so the plain apply is refused.
	_, err := env.executor.Apply(context.Background(), session.ID, false)
	if !errors.Is(err, ErrAcknowledgmentRequired) {
		t.Fatalf("Expected ErrAcknowledgmentRequired, got %v", err)
	}

	if _, err := env.executor.Apply(context.Background(), session.ID, true); err != nil {
		t.Fatalf("Acknowledged apply failed: %v", err)
	}

	if len(env.repo.parts) != 0 || len(env.repo.apps) != 0 {
		t.Errorf("Expected empty store, got %d parts and %d applications", len(env.repo.parts), len(env.repo.apps))
	}
}

func TestImportExecutor_RefusesBlockingErrors(t *testing.T) {
	env := newImportTestEnv(t)

	wb := &workbook.ParsedWorkbook{
		Parts: []dtos.FileRow[entities.PartRecord]{
			{RowNum: 4, Record: entities.PartRecord{SKU: "", PartType: "Disco", Status: "active"}},
		},
	}
	session := env.openReview(t, wb)

	_, err := env.executor.Apply(context.Background(), session.ID, true)
	if !errors.Is(err, ErrImportNotApplicable) {
		t.Errorf("Expected ErrImportNotApplicable, got %v", err)
	}

	// Nothing was written and no history row exists.
	entries, err := env.history.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("A refused import must not write history, got %d entries", len(entries))
	}
}

func TestImportExecutor_UnknownReview(t *testing.T) {
	env := newImportTestEnv(t)

	_, err := env.executor.Apply(context.Background(), "no-such-review", false)
	if !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("Expected ErrReviewNotFound, got %v", err)
	}
}

func TestImportExecutor_SecondApplyRejected(t *testing.T) {
	env := newImportTestEnv(t)
	env.seedPart(partID1, "BD-1001", "Disco")

	wb := &workbook.ParsedWorkbook{
		Parts: []dtos.FileRow[entities.PartRecord]{
			{RowNum: 4, Record: entities.PartRecord{ID: partID1, SKU: "BD-1001", PartType: "Disco", Status: "active"}},
			{RowNum: 5, Record: entities.PartRecord{SKU: "BD-2000", PartType: "Kit", Status: "active"}},
		},
	}
	session := env.openReview(t, wb)

	if _, err := env.executor.Apply(context.Background(), session.ID, false); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}

	_, err := env.executor.Apply(context.Background(), session.ID, false)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("Expected InvalidStateError on second apply, got %v", err)
	}
	if stateErr.State != dtos.StateSucceeded {
		t.Errorf("Error should report current state, got %q", stateErr.State)
	}
}

func TestImportExecutor_LockHeld(t *testing.T) {
	env := newImportTestEnv(t)
	env.seedPart(partID1, "BD-1001", "Disco")

	wb := &workbook.ParsedWorkbook{
		Parts: []dtos.FileRow[entities.PartRecord]{
			{RowNum: 4, Record: entities.PartRecord{ID: partID1, SKU: "BD-1001", PartType: "Disco", Status: "active"}},
			{RowNum: 5, Record: entities.PartRecord{SKU: "BD-2000", PartType: "Kit", Status: "active"}},
		},
	}
	session := env.openReview(t, wb)

	release, err := env.locker.Acquire(context.Background(), "other-operation", importLockTTL)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = env.executor.Apply(context.Background(), session.ID, false)
	if !errors.Is(err, common.ErrLockHeld) {
		t.Errorf("Expected ErrLockHeld while another operation runs, got %v", err)
	}
}

func TestImportExecutor_WriteFailureLeavesSnapshotForRecovery(t *testing.T) {
	env := newImportTestEnv(t)
	env.seedPart(partID1, "BD-1001", "Disco")
	env.repo.failOn["BulkInsertParts"] = errors.New("connection reset")

	wb := &workbook.ParsedWorkbook{
		Parts: []dtos.FileRow[entities.PartRecord]{
			{RowNum: 4, Record: entities.PartRecord{ID: partID1, SKU: "BD-1001", PartType: "Disco", Status: "active"}},
			{RowNum: 5, Record: entities.PartRecord{SKU: "BD-2000", PartType: "Kit", Status: "active"}},
		},
	}
	session := env.openReview(t, wb)

	_, err := env.executor.Apply(context.Background(), session.ID, false)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ExecutionError, got %v", err)
	}
	if execErr.Stage != dtos.StageApply {
		t.Errorf("Expected failure in apply stage, got %q", execErr.Stage)
	}
	if execErr.ImportID == "" {
		t.Error("An apply-stage failure must name the snapshot that remains for rollback")
	}

	// The snapshot persisted before the failure is still there.
	if _, err := env.history.FindByID(context.Background(), execErr.ImportID); err != nil {
		t.Errorf("Snapshot should survive the failed apply: %v", err)
	}

	got, err := env.reviews.Get(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != dtos.StateFailed {
		t.Errorf("Session should be failed, got %q", got.State)
	}
}
