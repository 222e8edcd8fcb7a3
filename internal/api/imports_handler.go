package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/services"
	"apexparts/catalogd/internal/workbook"

	"github.com/go-chi/chi/v5"
)

const maxWorkbookBytes = 32 << 20 // 32 MiB

// DiffImportHandler handles POST /api/v1/imports/diff.
// It accepts a multipart workbook upload, computes the classification and
// validation against the live store, and opens a review session.
func DiffImportHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := r.ParseMultipartForm(maxWorkbookBytes); err != nil {
			common.RespondError(w, initTime, err, "could not read upload", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			common.RespondError(w, initTime, err, "missing workbook file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		parsed, err := workbook.Parse(file)
		if err != nil {
			var schemaErr *workbook.SchemaError
			if errors.As(err, &schemaErr) {
				// Structural problems are fatal to the attempt and reported
				// before any diffing happens.
				common.RespondError(w, initTime, schemaErr, "workbook schema error", http.StatusUnprocessableEntity)
				return
			}
			common.RespondError(w, initTime, err, "failed to parse workbook")
			return
		}

		diff, err := deps.Services.Diff.Diff(r.Context(), parsed)
		if err != nil {
			common.RespondError(w, initTime, err, "failed to compute diff")
			return
		}

		validation := deps.Services.Validation.Validate(diff, parsed)

		meta := dtos.FileMeta{FileName: header.Filename, FileSize: header.Size}
		session := deps.Services.Reviews.Create(meta, diff, validation)

		common.RespondSuccess(w, initTime, "diff computed", dtos.DiffResponse{
			ReviewID:   session.ID,
			State:      session.State,
			File:       meta,
			Diff:       diff,
			Validation: validation,
		})
	}
}

// ApplyImportHandler handles POST /api/v1/imports/review/{reviewID}/apply.
func ApplyImportHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		reviewID := chi.URLParam(r, "reviewID")

		var req dtos.ApplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Executor.Apply(r.Context(), reviewID, req.Acknowledged)
		if err != nil {
			respondApplyError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "import applied", result)
	}
}

func respondApplyError(w http.ResponseWriter, initTime time.Time, err error) {
	var stateErr *services.InvalidStateError
	var execErr *services.ExecutionError

	switch {
	case errors.Is(err, services.ErrReviewNotFound):
		common.RespondError(w, initTime, err, "", http.StatusNotFound)
	case errors.Is(err, services.ErrImportNotApplicable),
		errors.Is(err, services.ErrAcknowledgmentRequired):
		common.RespondError(w, initTime, err, "", http.StatusConflict)
	case errors.As(err, &stateErr):
		common.RespondError(w, initTime, err, "", http.StatusConflict)
	case errors.Is(err, common.ErrLockHeld):
		common.RespondError(w, initTime, err, "", http.StatusLocked)
	case errors.As(err, &execErr):
		// The staged failure description tells the caller where it stopped
		// and which snapshot remains available for manual rollback.
		common.RespondError(w, initTime, err, "", http.StatusInternalServerError)
	default:
		common.RespondError(w, initTime, err, "apply failed")
	}
}

// RollbackImportHandler handles POST /api/v1/imports/{importID}/rollback.
func RollbackImportHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		importID := chi.URLParam(r, "importID")

		err := deps.Services.Rollback.RollbackToImport(r.Context(), importID)
		if err != nil {
			var restoreErr *services.RestoreError
			switch {
			case errors.Is(err, services.ErrSnapshotNotFound):
				common.RespondError(w, initTime, err, "", http.StatusNotFound)
			case errors.Is(err, common.ErrLockHeld):
				common.RespondError(w, initTime, err, "", http.StatusLocked)
			case errors.As(err, &restoreErr):
				common.RespondError(w, initTime, err, "", http.StatusInternalServerError)
			default:
				common.RespondError(w, initTime, err, "rollback failed")
			}
			return
		}

		common.RespondSuccess(w, initTime, "import rolled back", map[string]string{"importId": importID})
	}
}

// ImportHistoryHandler handles GET /api/v1/imports/history.
func ImportHistoryHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		entries, err := deps.Repo.History.List(r.Context(), 100)
		if err != nil {
			common.RespondError(w, initTime, err, "failed to list import history")
			return
		}

		common.RespondSuccess(w, initTime, "import history", entries)
	}
}

// ReviewStatusHandler handles GET /api/v1/imports/review/{reviewID}, so a
// caller can poll where a long apply currently stands.
func ReviewStatusHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		reviewID := chi.URLParam(r, "reviewID")

		session, err := deps.Services.Reviews.Get(reviewID)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusNotFound)
			return
		}

		common.RespondSuccess(w, initTime, "review status", map[string]any{
			"reviewId": session.ID,
			"state":    session.State,
			"stage":    session.Stage,
			"importId": session.ImportID,
		})
	}
}
