package gorm

import "time"

// ImportHistory is the audit record written once per applied import. The
// snapshot column embeds the full pre-import table contents as JSON; the row
// is immutable after the apply finishes and is deleted only by a successful
// rollback consuming it.
type ImportHistory struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	FileName     string    `gorm:"column:file_name"`
	FileSize     int64     `gorm:"column:file_size"`
	Snapshot     []byte    `gorm:"column:snapshot;type:jsonb"`
	TotalAdds    int       `gorm:"column:total_adds"`
	TotalUpdates int       `gorm:"column:total_updates"`
	TotalDeletes int       `gorm:"column:total_deletes"`
	ExecutionMs  int64     `gorm:"column:execution_ms"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ImportHistory) TableName() string {
	return "import_history"
}
