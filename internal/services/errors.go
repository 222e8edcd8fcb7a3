package services

import (
	"errors"
	"fmt"

	"apexparts/catalogd/internal/models/dtos"
)

var (
	// ErrReviewNotFound means the review session expired or never existed;
	// the caller re-runs the diff.
	ErrReviewNotFound = errors.New("review session not found or expired")

	// ErrImportNotApplicable means the validation result carries blocking
	// errors; the source file must be fixed and re-diffed.
	ErrImportNotApplicable = errors.New("import has blocking validation errors")

	// ErrAcknowledgmentRequired means warnings exist and the caller has not
	// supplied the explicit acknowledgment flag.
	ErrAcknowledgmentRequired = errors.New("validation warnings require explicit acknowledgment")

	// ErrSnapshotNotFound means no snapshot exists for the import id; the
	// usual cause is that it was already consumed by an earlier rollback.
	ErrSnapshotNotFound = errors.New("no snapshot found for import; it may already have been rolled back")
)

// InvalidStateError reports an apply attempted from the wrong session state.
type InvalidStateError struct {
	State dtos.ReviewState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("import cannot be applied from state %q", e.State)
}

// ExecutionError wraps an apply failure with the stage it failed in. When a
// snapshot was persisted before the failure, ImportID names the rollback
// anchor that remains available for manual recovery.
type ExecutionError struct {
	Stage    dtos.ImportStage
	ImportID string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.ImportID != "" {
		return fmt.Sprintf("import failed during %s stage (snapshot %s remains available for rollback): %v", e.Stage, e.ImportID, e.Err)
	}
	return fmt.Sprintf("import failed during %s stage: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// RestoreError reports a write failure mid-restore. It is deliberately loud:
// the store may be half-restored and needs attention, which is a different
// situation from ErrSnapshotNotFound.
type RestoreError struct {
	Step string
	Err  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("rollback failed during %s; store may be partially restored: %v", e.Step, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }
