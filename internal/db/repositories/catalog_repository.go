package repositories

import (
	"context"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/models/entities"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// fetchPageSize is the page used to walk past any server-side row ceiling.
const fetchPageSize = 500

// writeBatchSize bounds the number of rows bound into one INSERT statement.
const writeBatchSize = 500

// CatalogRepository is the bulk read/write surface over the four governed
// tables. Diff assembly, snapshot capture, apply, and rollback all go through
// it; none of them assume a single round trip returns a full table.
type CatalogRepository interface {
	FetchAllParts(ctx context.Context) ([]entities.PartRecord, error)
	FetchAllApplications(ctx context.Context) ([]entities.VehicleApplication, error)
	FetchAllCrossReferences(ctx context.Context) ([]entities.CrossReference, error)
	FetchAllAliases(ctx context.Context) ([]entities.VehicleAlias, error)

	BulkInsertParts(ctx context.Context, rows []entities.PartRecord) error
	BulkInsertApplications(ctx context.Context, rows []entities.VehicleApplication) error
	BulkInsertCrossReferences(ctx context.Context, rows []entities.CrossReference) error
	BulkInsertAliases(ctx context.Context, rows []entities.VehicleAlias) error

	BulkUpdateParts(ctx context.Context, rows []entities.PartRecord) error
	BulkUpdateApplications(ctx context.Context, rows []entities.VehicleApplication) error
	BulkUpdateCrossReferences(ctx context.Context, rows []entities.CrossReference) error
	BulkUpdateAliases(ctx context.Context, rows []entities.VehicleAlias) error

	BulkDeleteParts(ctx context.Context, ids []string) error
	BulkDeleteApplications(ctx context.Context, ids []string) error
	BulkDeleteCrossReferences(ctx context.Context, ids []string) error
	BulkDeleteAliases(ctx context.Context, ids []string) error

	DeleteAllParts(ctx context.Context) error
	DeleteAllApplications(ctx context.Context) error
	DeleteAllCrossReferences(ctx context.Context) error
	DeleteAllAliases(ctx context.Context) error
}

// PostgresCatalogRepo implements CatalogRepository over sqlx.
type PostgresCatalogRepo struct {
	db *sqlx.DB
}

var _ CatalogRepository = (*PostgresCatalogRepo)(nil)

func NewCatalogRepository(db *sqlx.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db}
}

func fetchPaged[T any](ctx context.Context, db *sqlx.DB, query string) ([]T, error) {
	var out []T
	for offset := 0; ; offset += fetchPageSize {
		var page []T
		if err := db.SelectContext(ctx, &page, query, fetchPageSize, offset); err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < fetchPageSize {
			return out, nil
		}
	}
}

func insertChunked[T any](ctx context.Context, db *sqlx.DB, query string, rows []T) error {
	for start := 0; start < len(rows); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := db.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func updateEach[T any](ctx context.Context, db *sqlx.DB, query string, rows []T) error {
	for i := range rows {
		if _, err := db.NamedExecContext(ctx, query, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func deleteByIDs(ctx context.Context, db *sqlx.DB, query string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, query, pq.Array(ids))
	return err
}

func (r *PostgresCatalogRepo) FetchAllParts(ctx context.Context) ([]entities.PartRecord, error) {
	return fetchPaged[entities.PartRecord](ctx, r.db, constants.SelectPartsPage)
}

func (r *PostgresCatalogRepo) FetchAllApplications(ctx context.Context) ([]entities.VehicleApplication, error) {
	return fetchPaged[entities.VehicleApplication](ctx, r.db, constants.SelectApplicationsPage)
}

func (r *PostgresCatalogRepo) FetchAllCrossReferences(ctx context.Context) ([]entities.CrossReference, error) {
	return fetchPaged[entities.CrossReference](ctx, r.db, constants.SelectCrossReferencesPage)
}

func (r *PostgresCatalogRepo) FetchAllAliases(ctx context.Context) ([]entities.VehicleAlias, error) {
	return fetchPaged[entities.VehicleAlias](ctx, r.db, constants.SelectAliasesPage)
}

func (r *PostgresCatalogRepo) BulkInsertParts(ctx context.Context, rows []entities.PartRecord) error {
	return insertChunked(ctx, r.db, constants.InsertPart, rows)
}

func (r *PostgresCatalogRepo) BulkInsertApplications(ctx context.Context, rows []entities.VehicleApplication) error {
	return insertChunked(ctx, r.db, constants.InsertApplication, rows)
}

func (r *PostgresCatalogRepo) BulkInsertCrossReferences(ctx context.Context, rows []entities.CrossReference) error {
	return insertChunked(ctx, r.db, constants.InsertCrossReference, rows)
}

func (r *PostgresCatalogRepo) BulkInsertAliases(ctx context.Context, rows []entities.VehicleAlias) error {
	return insertChunked(ctx, r.db, constants.InsertAlias, rows)
}

func (r *PostgresCatalogRepo) BulkUpdateParts(ctx context.Context, rows []entities.PartRecord) error {
	return updateEach(ctx, r.db, constants.UpdatePart, rows)
}

func (r *PostgresCatalogRepo) BulkUpdateApplications(ctx context.Context, rows []entities.VehicleApplication) error {
	return updateEach(ctx, r.db, constants.UpdateApplication, rows)
}

func (r *PostgresCatalogRepo) BulkUpdateCrossReferences(ctx context.Context, rows []entities.CrossReference) error {
	return updateEach(ctx, r.db, constants.UpdateCrossReference, rows)
}

func (r *PostgresCatalogRepo) BulkUpdateAliases(ctx context.Context, rows []entities.VehicleAlias) error {
	return updateEach(ctx, r.db, constants.UpdateAlias, rows)
}

func (r *PostgresCatalogRepo) BulkDeleteParts(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, constants.DeletePartsByID, ids)
}

func (r *PostgresCatalogRepo) BulkDeleteApplications(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, constants.DeleteApplicationsByID, ids)
}

func (r *PostgresCatalogRepo) BulkDeleteCrossReferences(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, constants.DeleteCrossReferencesByID, ids)
}

func (r *PostgresCatalogRepo) BulkDeleteAliases(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, r.db, constants.DeleteAliasesByID, ids)
}

func (r *PostgresCatalogRepo) DeleteAllParts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, constants.DeleteAllParts)
	return err
}

func (r *PostgresCatalogRepo) DeleteAllApplications(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, constants.DeleteAllApplications)
	return err
}

func (r *PostgresCatalogRepo) DeleteAllCrossReferences(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, constants.DeleteAllCrossReferences)
	return err
}

func (r *PostgresCatalogRepo) DeleteAllAliases(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, constants.DeleteAllAliases)
	return err
}
