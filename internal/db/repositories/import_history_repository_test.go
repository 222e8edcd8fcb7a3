package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"apexparts/catalogd/internal/models/dtos"
	gormModels "apexparts/catalogd/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&gormModels.ImportHistory{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func TestImportHistoryRepo_CreateAndFind(t *testing.T) {
	repo := NewImportHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &gormModels.ImportHistory{
		FileName: "catalog.xlsx",
		FileSize: 4096,
		Snapshot: []byte(`{"parts":[],"applications":[],"crossReferences":[],"aliases":[]}`),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("Create must assign an id")
	}

	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if rec.FileName != "catalog.xlsx" || rec.FileSize != 4096 {
		t.Errorf("Record did not round-trip: %+v", rec)
	}
	if len(rec.Snapshot) == 0 {
		t.Error("Snapshot payload must round-trip")
	}
}

func TestImportHistoryRepo_FindUnknownID(t *testing.T) {
	repo := NewImportHistoryRepo(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("Expected ErrHistoryNotFound, got %v", err)
	}
}

func TestImportHistoryRepo_UpdateSummary(t *testing.T) {
	repo := NewImportHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &gormModels.ImportHistory{FileName: "catalog.xlsx", Snapshot: []byte(`{}`)})
	if err != nil {
		t.Fatal(err)
	}

	summary := dtos.DiffSummary{TotalAdds: 3, TotalUpdates: 2, TotalDeletes: 1, TotalChanges: 6}
	if err := repo.UpdateSummary(ctx, id, summary, 1234); err != nil {
		t.Fatalf("UpdateSummary failed: %v", err)
	}

	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalAdds != 3 || rec.TotalUpdates != 2 || rec.TotalDeletes != 1 || rec.ExecutionMs != 1234 {
		t.Errorf("Summary not persisted: %+v", rec)
	}
}

func TestImportHistoryRepo_DeleteConsumes(t *testing.T) {
	repo := NewImportHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &gormModels.ImportHistory{FileName: "catalog.xlsx", Snapshot: []byte(`{}`)})
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The second delete is the double-rollback case.
	if err := repo.Delete(ctx, id); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("Deleting a consumed row must return ErrHistoryNotFound, got %v", err)
	}

	if _, err := repo.FindByID(ctx, id); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("Consumed row must not be findable, got %v", err)
	}
}

func TestImportHistoryRepo_ListNewestFirstWithoutSnapshots(t *testing.T) {
	repo := NewImportHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	older := &gormModels.ImportHistory{FileName: "first.xlsx", Snapshot: []byte(`{}`), CreatedAt: time.Now().Add(-time.Hour)}
	newer := &gormModels.ImportHistory{FileName: "second.xlsx", Snapshot: []byte(`{}`), CreatedAt: time.Now()}
	if _, err := repo.Create(ctx, older); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, newer); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].FileName != "second.xlsx" {
		t.Errorf("Entries must come back newest first, got %q", entries[0].FileName)
	}
}
