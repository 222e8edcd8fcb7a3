package constants

// Validation issue codes. Errors block apply; warnings require an explicit
// acknowledgment flag before apply is allowed.
const (
	IssueDuplicateSKU      = "duplicate_sku"
	IssueMalformedID       = "malformed_id"
	IssueIDNotFound        = "id_not_found"
	IssueOrphanedReference = "orphaned_reference"
	IssueInvalidEnum       = "invalid_enum"
	IssueInvalidYearRange  = "invalid_year_range"
	IssueMissingRequired   = "missing_required"
	IssueUnparseableValue  = "unparseable_value"
	IssueCascadeDelete     = "cascade_delete"
	IssueUpdateNotice      = "update_notice"
	IssueTombstoneUnknown  = "tombstone_unknown"
)

// Severity levels for validation issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)
