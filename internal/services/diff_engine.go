package services

import (
	"fmt"
	"sort"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/models/dtos"
)

// EntityAdapter injects the per-entity matching and comparison strategy into
// the generic diff. One diff implementation serves all four row shapes.
type EntityAdapter[T any] struct {
	// Sheet names the worksheet, used on issues and diff output.
	Sheet string
	// ID extracts the hidden store identifier; empty means "candidate new
	// record".
	ID func(T) string
	// Key extracts the business key used for deterministic ordering and for
	// operator-facing messages.
	Key func(T) string
	// Tombstone reports an explicit in-row delete marker. Nil when the
	// entity has none.
	Tombstone func(T) bool
	// Compare returns the names of fields that differ between the store row
	// and the file row after canonicalization. Identity and timestamp
	// fields are not compared.
	Compare func(store, file T) []string
	// Merge builds the after-row for an update: file values on the store
	// row's identity.
	Merge func(store, file T) T
}

// diffSheet classifies the union of file rows and store rows for one entity.
// The file is the full desired state: a store row absent from the file is a
// delete. Every row lands in exactly one bucket; rows that cannot be
// classified (a hidden id no store row carries) come back as issues instead.
func diffSheet[T any](a EntityAdapter[T], fileRows []dtos.FileRow[T], storeRows []T) (dtos.SheetDiff[T], []dtos.ValidationIssue) {
	out := dtos.SheetDiff[T]{Sheet: a.Sheet}
	var issues []dtos.ValidationIssue

	byID := make(map[string]T, len(storeRows))
	for _, row := range storeRows {
		byID[Canon(a.ID(row))] = row
	}
	seen := make(map[string]bool, len(storeRows))

	for _, fr := range fileRows {
		rec := fr.Record
		id := Canon(a.ID(rec))

		if a.Tombstone != nil && a.Tombstone(rec) {
			store, ok := byID[id]
			if id == "" || !ok {
				issues = append(issues, dtos.ValidationIssue{
					Code:     constants.IssueTombstoneUnknown,
					Severity: constants.SeverityWarning,
					Message:  fmt.Sprintf("row %q is marked for deletion but matches no existing record; it will be ignored", a.Key(rec)),
					Sheet:    a.Sheet,
					Row:      fr.RowNum,
					Value:    a.Key(rec),
				})
				continue
			}
			seen[id] = true
			out.Deletes = append(out.Deletes, dtos.DiffItem[T]{Kind: dtos.DiffDelete, Row: store})
			continue
		}

		if id == "" {
			out.Adds = append(out.Adds, dtos.DiffItem[T]{Kind: dtos.DiffAdd, Row: rec})
			continue
		}

		store, ok := byID[id]
		if !ok {
			// A hidden id that matches nothing cannot target a record; the
			// row is not silently downgraded to an add.
			issues = append(issues, dtos.ValidationIssue{
				Code:     constants.IssueIDNotFound,
				Severity: constants.SeverityError,
				Message:  fmt.Sprintf("row %q carries an identifier that matches no existing record; it may have been deleted since the export", a.Key(rec)),
				Sheet:    a.Sheet,
				Row:      fr.RowNum,
				Value:    id,
			})
			continue
		}

		seen[id] = true
		changed := a.Compare(store, rec)
		if len(changed) == 0 {
			out.Unchanged = append(out.Unchanged, dtos.DiffItem[T]{Kind: dtos.DiffUnchanged, Row: store})
			continue
		}

		after := a.Merge(store, rec)
		before := store
		out.Updates = append(out.Updates, dtos.DiffItem[T]{
			Kind:          dtos.DiffUpdate,
			Row:           after,
			Before:        &before,
			After:         &after,
			ChangedFields: changed,
		})
	}

	for _, row := range storeRows {
		if !seen[Canon(a.ID(row))] {
			out.Deletes = append(out.Deletes, dtos.DiffItem[T]{Kind: dtos.DiffDelete, Row: row})
		}
	}

	sortItems(a, out.Adds)
	sortItems(a, out.Updates)
	sortItems(a, out.Deletes)
	sortItems(a, out.Unchanged)
	return out, issues
}

func sortItems[T any](a EntityAdapter[T], items []dtos.DiffItem[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		return a.Key(items[i].Row) < a.Key(items[j].Row)
	})
}
