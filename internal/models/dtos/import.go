package dtos

import "time"

// ImportStage identifies how far an apply got before finishing or failing.
type ImportStage string

const (
	StageSnapshot ImportStage = "snapshot"
	StageValidate ImportStage = "validate"
	StageApply    ImportStage = "apply"
	StageHistory  ImportStage = "history"
)

// ReviewState is the caller-facing import state machine.
type ReviewState string

const (
	StateIdle       ReviewState = "idle"
	StateDiffing    ReviewState = "diffing"
	StateReviewing  ReviewState = "reviewing"
	StateExecuting  ReviewState = "executing"
	StateSucceeded  ReviewState = "succeeded"
	StateFailed     ReviewState = "failed"
	StateRolledBack ReviewState = "rolled_back"
)

// FileMeta describes the uploaded workbook for the history record.
type FileMeta struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

// ReviewSession holds a computed diff between the diff endpoint and the
// apply endpoint. Stage is only meaningful while State is executing.
type ReviewSession struct {
	ID         string            `json:"id"`
	State      ReviewState       `json:"state"`
	Stage      ImportStage       `json:"stage,omitempty"`
	File       FileMeta          `json:"file"`
	Diff       *DiffResult       `json:"diff"`
	Validation *ValidationResult `json:"validation"`
	ImportID   string            `json:"importId,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// ImportResult is returned by a successful apply.
type ImportResult struct {
	ImportID        string      `json:"importId"`
	Summary         DiffSummary `json:"summary"`
	ExecutionTimeMs int64       `json:"executionTimeMs"`
}

// DiffResponse is the payload of the diff endpoint: everything the review
// surface needs to render the preview and collect acknowledgment.
type DiffResponse struct {
	ReviewID   string            `json:"reviewId"`
	State      ReviewState       `json:"state"`
	File       FileMeta          `json:"file"`
	Diff       *DiffResult       `json:"diff"`
	Validation *ValidationResult `json:"validation"`
}

// ApplyRequest is the body of the apply endpoint.
type ApplyRequest struct {
	Acknowledged bool `json:"acknowledged"`
}

// ImportHistoryEntry is one audit listing row (snapshot payload omitted).
type ImportHistoryEntry struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	TotalAdds    int       `json:"totalAdds"`
	TotalUpdates int       `json:"totalUpdates"`
	TotalDeletes int       `json:"totalDeletes"`
	ExecutionMs  int64     `json:"executionMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ExportLinkResponse carries a presigned single-use download URL.
type ExportLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
