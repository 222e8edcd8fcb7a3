package services

import (
	"testing"
	"time"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"
)

func storePart(id, sku, partType string) entities.PartRecord {
	return entities.PartRecord{
		ID:        id,
		SKU:       sku,
		PartType:  partType,
		Status:    string(constants.PartStatusActive),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fileRow(rowNum int, p entities.PartRecord) dtos.FileRow[entities.PartRecord] {
	return dtos.FileRow[entities.PartRecord]{RowNum: rowNum, Record: p}
}

func TestDiffSheet_RoundTripIsUnchanged(t *testing.T) {
	store := []entities.PartRecord{
		storePart("11111111-1111-1111-1111-111111111111", "BD-1001", "Disco"),
		storePart("22222222-2222-2222-2222-222222222222", "BD-1002", "Tambor"),
	}

	// An unmodified export: same ids, same values, stray whitespace.
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{ID: store[0].ID, SKU: " BD-1001 ", PartType: "Disco", Status: "active"}),
		fileRow(5, entities.PartRecord{ID: store[1].ID, SKU: "BD-1002", PartType: "Tambor", Status: "active"}),
	}

	diff, issues := diffSheet(partAdapter(), file, store)

	if len(issues) != 0 {
		t.Fatalf("Expected no issues, got %v", issues)
	}
	if len(diff.Adds) != 0 || len(diff.Updates) != 0 || len(diff.Deletes) != 0 {
		t.Errorf("Expected all rows unchanged, got adds=%d updates=%d deletes=%d",
			len(diff.Adds), len(diff.Updates), len(diff.Deletes))
	}
	if len(diff.Unchanged) != 2 {
		t.Errorf("Expected 2 unchanged rows, got %d", len(diff.Unchanged))
	}
}

func TestDiffSheet_ClassifiesEveryBucket(t *testing.T) {
	store := []entities.PartRecord{
		storePart("11111111-1111-1111-1111-111111111111", "BD-1001", "Disco"),
		storePart("22222222-2222-2222-2222-222222222222", "BD-1002", "Tambor"),
		storePart("33333333-3333-3333-3333-333333333333", "BD-1003", "Cubo"),
	}

	file := []dtos.FileRow[entities.PartRecord]{
		// no id: add
		fileRow(4, entities.PartRecord{SKU: "BD-2000", PartType: "Kit", Status: "active"}),
		// matched id, changed field: update
		fileRow(5, entities.PartRecord{ID: store[0].ID, SKU: "BD-1001", PartType: "Kit", Status: "active"}),
		// matched id, same values: unchanged
		fileRow(6, entities.PartRecord{ID: store[1].ID, SKU: "BD-1002", PartType: "Tambor", Status: "active"}),
		// BD-1003 absent from file: delete
	}

	diff, issues := diffSheet(partAdapter(), file, store)

	if len(issues) != 0 {
		t.Fatalf("Expected no issues, got %v", issues)
	}
	if len(diff.Adds) != 1 || diff.Adds[0].Row.SKU != "BD-2000" {
		t.Errorf("Expected one add for BD-2000, got %+v", diff.Adds)
	}
	if len(diff.Updates) != 1 {
		t.Fatalf("Expected one update, got %d", len(diff.Updates))
	}
	if len(diff.Deletes) != 1 || diff.Deletes[0].Row.SKU != "BD-1003" {
		t.Errorf("Expected BD-1003 deleted, got %+v", diff.Deletes)
	}
	if len(diff.Unchanged) != 1 || diff.Unchanged[0].Row.SKU != "BD-1002" {
		t.Errorf("Expected BD-1002 unchanged, got %+v", diff.Unchanged)
	}

	total := len(diff.Adds) + len(diff.Updates) + len(diff.Deletes) + len(diff.Unchanged)
	if total != 4 {
		t.Errorf("Every row must land in exactly one bucket, got %d classifications", total)
	}
}

func TestDiffSheet_UpdateCarriesBeforeAfterAndChangedFields(t *testing.T) {
	store := []entities.PartRecord{storePart("11111111-1111-1111-1111-111111111111", "BD-1001", "Disco")}
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{ID: store[0].ID, SKU: "BD-1001", PartType: "Kit", BoltPattern: "5x114", Status: "active"}),
	}

	diff, _ := diffSheet(partAdapter(), file, store)

	if len(diff.Updates) != 1 {
		t.Fatalf("Expected one update, got %d", len(diff.Updates))
	}
	upd := diff.Updates[0]
	if upd.Before == nil || upd.After == nil {
		t.Fatal("Update must carry both before and after rows")
	}
	if upd.Before.PartType != "Disco" || upd.After.PartType != "Kit" {
		t.Errorf("Before/after mismatch: before=%q after=%q", upd.Before.PartType, upd.After.PartType)
	}
	if upd.After.ID != store[0].ID {
		t.Errorf("After row must keep the store identity, got %q", upd.After.ID)
	}
	if !upd.After.CreatedAt.Equal(store[0].CreatedAt) {
		t.Error("After row must keep the store CreatedAt")
	}
	if len(upd.ChangedFields) != 2 {
		t.Errorf("Expected 2 changed fields, got %v", upd.ChangedFields)
	}
}

func TestDiffSheet_TombstoneDeletesKnownRecord(t *testing.T) {
	store := []entities.PartRecord{storePart("11111111-1111-1111-1111-111111111111", "BD-1001", "Disco")}
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{ID: store[0].ID, SKU: "BD-1001", PartType: "Disco", Status: "delete"}),
	}

	diff, issues := diffSheet(partAdapter(), file, store)

	if len(issues) != 0 {
		t.Fatalf("Expected no issues, got %v", issues)
	}
	if len(diff.Deletes) != 1 || diff.Deletes[0].Row.ID != store[0].ID {
		t.Errorf("Expected tombstoned row deleted, got %+v", diff.Deletes)
	}
	if len(diff.Adds)+len(diff.Updates)+len(diff.Unchanged) != 0 {
		t.Error("Tombstoned row must not appear in any other bucket")
	}
}

func TestDiffSheet_TombstoneForUnknownRecordIsWarning(t *testing.T) {
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{SKU: "BD-9999", PartType: "Disco", Status: "delete"}),
	}

	diff, issues := diffSheet(partAdapter(), file, nil)

	if len(diff.Adds)+len(diff.Updates)+len(diff.Deletes)+len(diff.Unchanged) != 0 {
		t.Error("A tombstone matching no record must be skipped, not classified")
	}
	if len(issues) != 1 {
		t.Fatalf("Expected one issue, got %d", len(issues))
	}
	if issues[0].Code != constants.IssueTombstoneUnknown || issues[0].Severity != constants.SeverityWarning {
		t.Errorf("Expected tombstone_unknown warning, got %+v", issues[0])
	}
}

func TestDiffSheet_StaleIDIsErrorNotAdd(t *testing.T) {
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{ID: "99999999-9999-9999-9999-999999999999", SKU: "BD-1001", PartType: "Disco", Status: "active"}),
	}

	diff, issues := diffSheet(partAdapter(), file, nil)

	if len(diff.Adds) != 0 {
		t.Error("A row with a stale id must not be downgraded to an add")
	}
	if len(issues) != 1 {
		t.Fatalf("Expected one issue, got %d", len(issues))
	}
	if issues[0].Code != constants.IssueIDNotFound || issues[0].Severity != constants.SeverityError {
		t.Errorf("Expected id_not_found error, got %+v", issues[0])
	}
	if issues[0].Row != 4 {
		t.Errorf("Issue must point at the file row, got %d", issues[0].Row)
	}
}

func TestDiffSheet_BucketsSortedByBusinessKey(t *testing.T) {
	file := []dtos.FileRow[entities.PartRecord]{
		fileRow(4, entities.PartRecord{SKU: "BD-3000", PartType: "Disco", Status: "active"}),
		fileRow(5, entities.PartRecord{SKU: "BD-1000", PartType: "Disco", Status: "active"}),
		fileRow(6, entities.PartRecord{SKU: "BD-2000", PartType: "Disco", Status: "active"}),
	}

	diff, _ := diffSheet(partAdapter(), file, nil)

	want := []string{"BD-1000", "BD-2000", "BD-3000"}
	for i, sku := range want {
		if diff.Adds[i].Row.SKU != sku {
			t.Fatalf("Adds not sorted by SKU: position %d got %q, want %q", i, diff.Adds[i].Row.SKU, sku)
		}
	}
}

func TestDiffSheet_ApplicationYearsCompareAsIntegers(t *testing.T) {
	store := []entities.VehicleApplication{{
		ID:        "11111111-1111-1111-1111-111111111111",
		PartID:    "22222222-2222-2222-2222-222222222222",
		PartSKU:   "BD-1001",
		Make:      "VW",
		Model:     "Gol",
		StartYear: 2010,
		EndYear:   2016,
	}}
	file := []dtos.FileRow[entities.VehicleApplication]{{
		RowNum: 4,
		Record: entities.VehicleApplication{
			ID:        store[0].ID,
			PartSKU:   "BD-1001",
			Make:      "VW",
			Model:     "Gol",
			StartYear: 2010,
			EndYear:   2018,
		},
	}}

	diff, issues := diffSheet(applicationAdapter(), file, store)

	if len(issues) != 0 {
		t.Fatalf("Expected no issues, got %v", issues)
	}
	if len(diff.Updates) != 1 {
		t.Fatalf("Expected one update, got %d", len(diff.Updates))
	}
	if got := diff.Updates[0].ChangedFields; len(got) != 1 || got[0] != "End Year" {
		t.Errorf("Expected only End Year changed, got %v", got)
	}
	if diff.Updates[0].After.PartID != store[0].PartID {
		t.Error("Child update must keep the store part id when the file leaves it blank")
	}
}
