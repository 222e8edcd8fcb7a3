package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/workbook"
)

const exportLinkTTL = 15 * time.Minute

// ExportCatalogHandler handles GET /api/v1/catalog/export: it streams the
// current store state as the editable workbook. Hidden identifier columns in
// the output make a later re-import round-trip cleanly.
func ExportCatalogHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		streamExport(deps, w, r)
	}
}

// ExportLinkHandler handles POST /api/v1/catalog/export/link: it returns a
// presigned single-use download URL for the export.
func ExportLinkHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		token, expiresAt, err := deps.Services.ExportSigner.Generate(exportLinkTTL)
		if err != nil {
			common.RespondError(w, initTime, err, "failed to generate export link")
			return
		}

		common.RespondSuccess(w, initTime, "export link generated", dtos.ExportLinkResponse{
			URL:       "/export?token=" + token,
			ExpiresAt: expiresAt,
		})
	}
}

// SignedExportHandler handles GET /export?token=...: the unauthenticated
// download path behind a presigned single-use token.
func SignedExportHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		token := r.URL.Query().Get("token")
		if token == "" {
			common.RespondError(w, initTime, nil, "missing token", http.StatusBadRequest)
			return
		}
		if err := deps.Services.ExportSigner.Redeem(token); err != nil {
			status := http.StatusForbidden
			if errors.Is(err, common.ErrTokenConsumed) {
				status = http.StatusGone
			}
			common.RespondError(w, initTime, err, "", status)
			return
		}

		streamExport(deps, w, r)
	}
}

func streamExport(deps *Dependencies, w http.ResponseWriter, r *http.Request) {
	initTime := time.Now()

	snap, err := deps.Services.Snapshots.Capture(r.Context())
	if err != nil {
		common.RespondError(w, initTime, err, "failed to read catalog")
		return
	}

	f, err := workbook.Build(snap.Parts, snap.Applications, snap.CrossReferences, snap.Aliases)
	if err != nil {
		common.RespondError(w, initTime, err, "failed to build workbook")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("catalog-export-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		logging.Error("Export stream failed", "error", err.Error())
	}
}
