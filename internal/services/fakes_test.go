package services

import (
	"context"
	"sync"
	"testing"

	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/models/entities"
	gormModels "apexparts/catalogd/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var _ repositories.CatalogRepository = (*fakeCatalogRepo)(nil)

// fakeCatalogRepo is an in-memory CatalogRepository. Fetches join PartSKU
// onto child rows from the parts table, like the real queries do. failOn
// injects an error into a single named method.
type fakeCatalogRepo struct {
	mu      sync.Mutex
	parts   map[string]entities.PartRecord
	apps    map[string]entities.VehicleApplication
	xrefs   map[string]entities.CrossReference
	aliases map[string]entities.VehicleAlias
	failOn  map[string]error
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		parts:   make(map[string]entities.PartRecord),
		apps:    make(map[string]entities.VehicleApplication),
		xrefs:   make(map[string]entities.CrossReference),
		aliases: make(map[string]entities.VehicleAlias),
		failOn:  make(map[string]error),
	}
}

func (f *fakeCatalogRepo) err(method string) error {
	return f.failOn[method]
}

func (f *fakeCatalogRepo) FetchAllParts(_ context.Context) ([]entities.PartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("FetchAllParts"); err != nil {
		return nil, err
	}
	out := make([]entities.PartRecord, 0, len(f.parts))
	for _, p := range f.parts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) FetchAllApplications(_ context.Context) ([]entities.VehicleApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("FetchAllApplications"); err != nil {
		return nil, err
	}
	out := make([]entities.VehicleApplication, 0, len(f.apps))
	for _, a := range f.apps {
		if p, ok := f.parts[a.PartID]; ok {
			a.PartSKU = p.SKU
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeCatalogRepo) FetchAllCrossReferences(_ context.Context) ([]entities.CrossReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("FetchAllCrossReferences"); err != nil {
		return nil, err
	}
	out := make([]entities.CrossReference, 0, len(f.xrefs))
	for _, x := range f.xrefs {
		if p, ok := f.parts[x.PartID]; ok {
			x.PartSKU = p.SKU
		}
		out = append(out, x)
	}
	return out, nil
}

func (f *fakeCatalogRepo) FetchAllAliases(_ context.Context) ([]entities.VehicleAlias, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("FetchAllAliases"); err != nil {
		return nil, err
	}
	out := make([]entities.VehicleAlias, 0, len(f.aliases))
	for _, a := range f.aliases {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeCatalogRepo) BulkInsertParts(_ context.Context, rows []entities.PartRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkInsertParts"); err != nil {
		return err
	}
	for _, r := range rows {
		f.parts[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkInsertApplications(_ context.Context, rows []entities.VehicleApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkInsertApplications"); err != nil {
		return err
	}
	for _, r := range rows {
		f.apps[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkInsertCrossReferences(_ context.Context, rows []entities.CrossReference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkInsertCrossReferences"); err != nil {
		return err
	}
	for _, r := range rows {
		f.xrefs[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkInsertAliases(_ context.Context, rows []entities.VehicleAlias) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkInsertAliases"); err != nil {
		return err
	}
	for _, r := range rows {
		f.aliases[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkUpdateParts(_ context.Context, rows []entities.PartRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkUpdateParts"); err != nil {
		return err
	}
	for _, r := range rows {
		f.parts[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkUpdateApplications(_ context.Context, rows []entities.VehicleApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkUpdateApplications"); err != nil {
		return err
	}
	for _, r := range rows {
		f.apps[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkUpdateCrossReferences(_ context.Context, rows []entities.CrossReference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkUpdateCrossReferences"); err != nil {
		return err
	}
	for _, r := range rows {
		f.xrefs[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkUpdateAliases(_ context.Context, rows []entities.VehicleAlias) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkUpdateAliases"); err != nil {
		return err
	}
	for _, r := range rows {
		f.aliases[r.ID] = r
	}
	return nil
}

func (f *fakeCatalogRepo) BulkDeleteParts(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkDeleteParts"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.parts, id)
	}
	return nil
}

func (f *fakeCatalogRepo) BulkDeleteApplications(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkDeleteApplications"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.apps, id)
	}
	return nil
}

func (f *fakeCatalogRepo) BulkDeleteCrossReferences(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkDeleteCrossReferences"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.xrefs, id)
	}
	return nil
}

func (f *fakeCatalogRepo) BulkDeleteAliases(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("BulkDeleteAliases"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.aliases, id)
	}
	return nil
}

func (f *fakeCatalogRepo) DeleteAllParts(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteAllParts"); err != nil {
		return err
	}
	f.parts = make(map[string]entities.PartRecord)
	return nil
}

func (f *fakeCatalogRepo) DeleteAllApplications(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteAllApplications"); err != nil {
		return err
	}
	f.apps = make(map[string]entities.VehicleApplication)
	return nil
}

func (f *fakeCatalogRepo) DeleteAllCrossReferences(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteAllCrossReferences"); err != nil {
		return err
	}
	f.xrefs = make(map[string]entities.CrossReference)
	return nil
}

func (f *fakeCatalogRepo) DeleteAllAliases(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("DeleteAllAliases"); err != nil {
		return err
	}
	f.aliases = make(map[string]entities.VehicleAlias)
	return nil
}

// Setup test database for the import history store
func setupHistoryDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&gormModels.ImportHistory{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}
