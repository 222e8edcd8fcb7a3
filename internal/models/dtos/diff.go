package dtos

import "apexparts/catalogd/internal/models/entities"

// DiffKind classifies one row relative to current store state.
type DiffKind string

const (
	DiffAdd       DiffKind = "add"
	DiffUpdate    DiffKind = "update"
	DiffDelete    DiffKind = "delete"
	DiffUnchanged DiffKind = "unchanged"
)

// FileRow pairs a parsed record with its worksheet row number so validation
// issues can point back at the cell the operator has to fix.
type FileRow[T any] struct {
	RowNum int `json:"rowNum"`
	Record T   `json:"record"`
}

// DiffItem is one classified row. Updates carry both sides plus the list of
// fields that actually differ after canonicalization.
type DiffItem[T any] struct {
	Kind          DiffKind `json:"kind"`
	Row           T        `json:"row"`
	Before        *T       `json:"before,omitempty"`
	After         *T       `json:"after,omitempty"`
	ChangedFields []string `json:"changedFields,omitempty"`
}

// SheetSummary counts classifications for one entity sheet.
type SheetSummary struct {
	Adds      int `json:"adds"`
	Updates   int `json:"updates"`
	Deletes   int `json:"deletes"`
	Unchanged int `json:"unchanged"`
}

// SheetDiff holds the full classification for one entity type. Buckets are
// sorted by business key so preview rendering is stable run to run.
type SheetDiff[T any] struct {
	Sheet     string        `json:"sheet"`
	Adds      []DiffItem[T] `json:"adds"`
	Updates   []DiffItem[T] `json:"updates"`
	Deletes   []DiffItem[T] `json:"deletes"`
	Unchanged []DiffItem[T] `json:"unchanged"`
	Summary   SheetSummary  `json:"summary"`
}

// DiffSummary aggregates counts across every sheet.
type DiffSummary struct {
	TotalAdds    int `json:"totalAdds"`
	TotalUpdates int `json:"totalUpdates"`
	TotalDeletes int `json:"totalDeletes"`
	TotalChanges int `json:"totalChanges"`
}

// DiffResult is the complete classification of one workbook against the
// store. RowIssues carries per-row problems discovered while classifying
// (stale hidden ids, tombstones for unknown records); the validation engine
// folds them into its result.
type DiffResult struct {
	Parts           SheetDiff[entities.PartRecord]         `json:"parts"`
	Applications    SheetDiff[entities.VehicleApplication] `json:"applications"`
	CrossReferences SheetDiff[entities.CrossReference]     `json:"crossReferences"`
	Aliases         SheetDiff[entities.VehicleAlias]       `json:"aliases"`
	Summary         DiffSummary                            `json:"summary"`
	RowIssues       []ValidationIssue                      `json:"rowIssues,omitempty"`
}

// Recount recomputes the per-sheet and aggregate summaries from the buckets.
func (d *DiffResult) Recount() {
	d.Parts.Summary = count(&d.Parts)
	d.Applications.Summary = count(&d.Applications)
	d.CrossReferences.Summary = count(&d.CrossReferences)
	d.Aliases.Summary = count(&d.Aliases)

	d.Summary = DiffSummary{}
	for _, s := range []SheetSummary{d.Parts.Summary, d.Applications.Summary, d.CrossReferences.Summary, d.Aliases.Summary} {
		d.Summary.TotalAdds += s.Adds
		d.Summary.TotalUpdates += s.Updates
		d.Summary.TotalDeletes += s.Deletes
	}
	d.Summary.TotalChanges = d.Summary.TotalAdds + d.Summary.TotalUpdates + d.Summary.TotalDeletes
}

func count[T any](s *SheetDiff[T]) SheetSummary {
	return SheetSummary{
		Adds:      len(s.Adds),
		Updates:   len(s.Updates),
		Deletes:   len(s.Deletes),
		Unchanged: len(s.Unchanged),
	}
}
