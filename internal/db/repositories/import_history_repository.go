package repositories

import (
	"context"
	"errors"

	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// ErrHistoryNotFound is returned when an import history row does not exist,
// usually because its snapshot was already consumed by a rollback.
var ErrHistoryNotFound = errors.New("import history record not found")

// ImportHistoryRepo handles persistence of import history records
type ImportHistoryRepo struct {
	db *gormlib.DB
}

// NewImportHistoryRepo creates a new import history repository
func NewImportHistoryRepo(db *gormlib.DB) *ImportHistoryRepo {
	return &ImportHistoryRepo{db: db}
}

// Create writes a new history row and returns its id.
func (r *ImportHistoryRepo) Create(ctx context.Context, rec *gorm.ImportHistory) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", err
	}
	return rec.ID, nil
}

// FindByID fetches one history row including the embedded snapshot.
func (r *ImportHistoryRepo) FindByID(ctx context.Context, id string) (*gorm.ImportHistory, error) {
	var rec gorm.ImportHistory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateSummary finalizes the history row after a successful apply.
func (r *ImportHistoryRepo) UpdateSummary(ctx context.Context, id string, summary dtos.DiffSummary, executionMs int64) error {
	return r.db.WithContext(ctx).
		Model(&gorm.ImportHistory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_adds":    summary.TotalAdds,
			"total_updates": summary.TotalUpdates,
			"total_deletes": summary.TotalDeletes,
			"execution_ms":  executionMs,
		}).Error
}

// Delete consumes a history row. Deleting a row that is already gone returns
// ErrHistoryNotFound so a second rollback of the same import fails cleanly.
func (r *ImportHistoryRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gorm.ImportHistory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// List returns audit entries newest first, without snapshot payloads.
func (r *ImportHistoryRepo) List(ctx context.Context, limit int) ([]dtos.ImportHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []gorm.ImportHistory
	err := r.db.WithContext(ctx).
		Select("id", "file_name", "file_size", "total_adds", "total_updates", "total_deletes", "execution_ms", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	entries := make([]dtos.ImportHistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, dtos.ImportHistoryEntry{
			ID:           rec.ID,
			FileName:     rec.FileName,
			FileSize:     rec.FileSize,
			TotalAdds:    rec.TotalAdds,
			TotalUpdates: rec.TotalUpdates,
			TotalDeletes: rec.TotalDeletes,
			ExecutionMs:  rec.ExecutionMs,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return entries, nil
}
