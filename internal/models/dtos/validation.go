package dtos

import "apexparts/catalogd/internal/constants"

// ValidationIssue is one addressable problem found in the diff or the raw
// file rows. Row is the worksheet row number (0 when the issue is not tied
// to a file row, e.g. cascade warnings on store rows).
type ValidationIssue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Sheet    string `json:"sheet"`
	Row      int    `json:"row,omitempty"`
	Column   string `json:"column,omitempty"`
	Value    string `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// IsError reports whether the issue blocks apply.
func (i ValidationIssue) IsError() bool {
	return i.Severity == constants.SeverityError
}

// SheetIssueCounts breaks error/warning totals down per sheet.
type SheetIssueCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// ValidationResult is the full outcome of validating a diff. Valid means no
// blocking errors; warnings still require an acknowledgment flag before the
// import can be applied.
type ValidationResult struct {
	Valid    bool                        `json:"valid"`
	Errors   []ValidationIssue           `json:"errors"`
	Warnings []ValidationIssue           `json:"warnings"`
	BySheet  map[string]SheetIssueCounts `json:"bySheet"`
}

// Add routes an issue into the right bucket and updates per-sheet counts.
func (r *ValidationResult) Add(issue ValidationIssue) {
	if r.BySheet == nil {
		r.BySheet = make(map[string]SheetIssueCounts)
	}
	c := r.BySheet[issue.Sheet]
	if issue.IsError() {
		r.Errors = append(r.Errors, issue)
		r.Valid = false
		c.Errors++
	} else {
		r.Warnings = append(r.Warnings, issue)
		c.Warnings++
	}
	r.BySheet[issue.Sheet] = c
}
