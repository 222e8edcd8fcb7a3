package services

import (
	"fmt"
	"strings"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"
	"apexparts/catalogd/internal/workbook"

	"github.com/google/uuid"
)

// ValidationService runs the rule checks over a computed diff and the raw
// file rows. Errors block apply; warnings are informational but the apply
// endpoint refuses to run until the caller acknowledges them.
type ValidationService struct {
	metrics *metrics.MetricsRegistry
}

func NewValidationService(reg *metrics.MetricsRegistry) *ValidationService {
	return &ValidationService{metrics: reg}
}

// Validate produces the full validation result for one import attempt.
func (s *ValidationService) Validate(diff *dtos.DiffResult, wb *workbook.ParsedWorkbook) *dtos.ValidationResult {
	res := &dtos.ValidationResult{Valid: true}

	// Row-level problems found during parsing and classification.
	for _, issue := range wb.RowIssues {
		res.Add(issue)
	}
	for _, issue := range diff.RowIssues {
		res.Add(issue)
	}

	s.validateParts(res, wb)
	s.validateApplications(res, diff, wb)
	s.validateCrossReferences(res, diff, wb)
	s.validateAliases(res, wb)

	s.cascadeWarnings(res, diff)
	s.updateNotices(res, diff)

	if s.metrics != nil {
		s.metrics.ValidationIssueTotal.WithLabelValues(constants.SeverityError).Add(float64(len(res.Errors)))
		s.metrics.ValidationIssueTotal.WithLabelValues(constants.SeverityWarning).Add(float64(len(res.Warnings)))
	}
	return res
}

func (s *ValidationService) validateParts(res *dtos.ValidationResult, wb *workbook.ParsedWorkbook) {
	seenSKU := make(map[string]int) // canon sku -> first row
	for _, fr := range wb.Parts {
		p := fr.Record
		checkID(res, constants.SheetParts, fr.RowNum, p.ID)
		requireField(res, constants.SheetParts, fr.RowNum, workbook.ColSKU, p.SKU)
		requireField(res, constants.SheetParts, fr.RowNum, workbook.ColPartType, p.PartType)
		requireField(res, constants.SheetParts, fr.RowNum, workbook.ColStatus, p.Status)

		sku := Canon(p.SKU)
		if sku != "" {
			if first, dup := seenSKU[sku]; dup {
				res.Add(dtos.ValidationIssue{
					Code:     constants.IssueDuplicateSKU,
					Severity: constants.SeverityError,
					Message:  fmt.Sprintf("SKU %q already appears in this file at row %d", sku, first),
					Sheet:    constants.SheetParts,
					Row:      fr.RowNum,
					Column:   workbook.ColSKU,
					Value:    sku,
				})
			} else {
				seenSKU[sku] = fr.RowNum
			}
		}

		checkEnum(res, constants.SheetParts, fr.RowNum, workbook.ColPartType, p.PartType, constants.PartTypes)
		checkEnum(res, constants.SheetParts, fr.RowNum, workbook.ColPositionType, p.PositionType, constants.PositionTypes)
		checkEnum(res, constants.SheetParts, fr.RowNum, workbook.ColABSType, p.ABSType, constants.ABSTypes)
		checkEnum(res, constants.SheetParts, fr.RowNum, workbook.ColDriveType, p.DriveType, constants.DriveTypes)
		checkEnum(res, constants.SheetParts, fr.RowNum, workbook.ColStatus, p.Status, constants.PartStatuses)
	}
}

func (s *ValidationService) validateApplications(res *dtos.ValidationResult, diff *dtos.DiffResult, wb *workbook.ParsedWorkbook) {
	surviving := survivingSKUs(diff)
	for _, fr := range wb.Applications {
		a := fr.Record
		checkID(res, constants.SheetApplications, fr.RowNum, a.ID)
		requireField(res, constants.SheetApplications, fr.RowNum, workbook.ColPartSKU, a.PartSKU)
		requireField(res, constants.SheetApplications, fr.RowNum, workbook.ColMake, a.Make)
		requireField(res, constants.SheetApplications, fr.RowNum, workbook.ColModel, a.Model)

		if a.StartYear == 0 {
			requireField(res, constants.SheetApplications, fr.RowNum, workbook.ColStartYear, "")
		}
		if a.EndYear == 0 {
			requireField(res, constants.SheetApplications, fr.RowNum, workbook.ColEndYear, "")
		}
		if a.StartYear != 0 && a.EndYear != 0 {
			if a.EndYear < a.StartYear {
				res.Add(dtos.ValidationIssue{
					Code:     constants.IssueInvalidYearRange,
					Severity: constants.SeverityError,
					Message:  fmt.Sprintf("end year %d is earlier than start year %d", a.EndYear, a.StartYear),
					Sheet:    constants.SheetApplications,
					Row:      fr.RowNum,
					Column:   workbook.ColEndYear,
					Value:    fmt.Sprintf("%d", a.EndYear),
				})
			}
			if a.StartYear < constants.MinVehicleYear {
				res.Add(dtos.ValidationIssue{
					Code:     constants.IssueInvalidYearRange,
					Severity: constants.SeverityError,
					Message:  fmt.Sprintf("start year %d is implausibly early", a.StartYear),
					Sheet:    constants.SheetApplications,
					Row:      fr.RowNum,
					Column:   workbook.ColStartYear,
					Value:    fmt.Sprintf("%d", a.StartYear),
					Expected: fmt.Sprintf("%d or later", constants.MinVehicleYear),
				})
			}
		}

		checkOrphan(res, constants.SheetApplications, fr.RowNum, a.PartSKU, surviving)
	}
}

func (s *ValidationService) validateCrossReferences(res *dtos.ValidationResult, diff *dtos.DiffResult, wb *workbook.ParsedWorkbook) {
	surviving := survivingSKUs(diff)
	for _, fr := range wb.CrossReferences {
		x := fr.Record
		checkID(res, constants.SheetCrossReferences, fr.RowNum, x.ID)
		requireField(res, constants.SheetCrossReferences, fr.RowNum, workbook.ColPartSKU, x.PartSKU)
		requireField(res, constants.SheetCrossReferences, fr.RowNum, workbook.ColCompetitorBrand, x.CompetitorBrand)
		requireField(res, constants.SheetCrossReferences, fr.RowNum, workbook.ColCompetitorSKU, x.CompetitorSKU)

		checkOrphan(res, constants.SheetCrossReferences, fr.RowNum, x.PartSKU, surviving)
	}
}

func (s *ValidationService) validateAliases(res *dtos.ValidationResult, wb *workbook.ParsedWorkbook) {
	for _, fr := range wb.Aliases {
		a := fr.Record
		checkID(res, constants.SheetAliases, fr.RowNum, a.ID)
		requireField(res, constants.SheetAliases, fr.RowNum, workbook.ColAlias, a.Alias)
		requireField(res, constants.SheetAliases, fr.RowNum, workbook.ColCanonicalName, a.CanonicalName)
		requireField(res, constants.SheetAliases, fr.RowNum, workbook.ColAliasType, a.AliasType)
		checkEnum(res, constants.SheetAliases, fr.RowNum, workbook.ColAliasType, a.AliasType, constants.AliasTypes)
	}
}

// cascadeWarnings surfaces every dependent record that deleting a part will
// remove as a side effect. Nothing is dropped silently: each dependent row
// gets its own warning naming the owning part's SKU.
func (s *ValidationService) cascadeWarnings(res *dtos.ValidationResult, diff *dtos.DiffResult) {
	deleted := make(map[string]string) // part id -> sku
	for _, item := range diff.Parts.Deletes {
		deleted[Canon(item.Row.ID)] = Canon(item.Row.SKU)
	}
	if len(deleted) == 0 {
		return
	}

	for _, app := range storeApplications(diff) {
		if sku, ok := deleted[Canon(app.PartID)]; ok {
			res.Add(dtos.ValidationIssue{
				Code:     constants.IssueCascadeDelete,
				Severity: constants.SeverityWarning,
				Message:  fmt.Sprintf("vehicle application %s %s %d-%d will be removed because part %q is being deleted", app.Make, app.Model, app.StartYear, app.EndYear, sku),
				Sheet:    constants.SheetApplications,
				Value:    sku,
			})
		}
	}
	for _, x := range storeCrossReferences(diff) {
		if sku, ok := deleted[Canon(x.PartID)]; ok {
			res.Add(dtos.ValidationIssue{
				Code:     constants.IssueCascadeDelete,
				Severity: constants.SeverityWarning,
				Message:  fmt.Sprintf("cross reference %s %s will be removed because part %q is being deleted", x.CompetitorBrand, x.CompetitorSKU, sku),
				Sheet:    constants.SheetCrossReferences,
				Value:    sku,
			})
		}
	}
}

// updateNotices surfaces every update so the operator sees the exact impact
// before committing, even when nothing is wrong.
func (s *ValidationService) updateNotices(res *dtos.ValidationResult, diff *dtos.DiffResult) {
	addNotices(res, constants.SheetParts, diff.Parts.Updates, func(p entities.PartRecord) string { return Canon(p.SKU) })
	addNotices(res, constants.SheetApplications, diff.Applications.Updates, func(a entities.VehicleApplication) string {
		return fmt.Sprintf("%s %s %s", Canon(a.PartSKU), Canon(a.Make), Canon(a.Model))
	})
	addNotices(res, constants.SheetCrossReferences, diff.CrossReferences.Updates, func(x entities.CrossReference) string {
		return fmt.Sprintf("%s %s", Canon(x.CompetitorBrand), Canon(x.CompetitorSKU))
	})
	addNotices(res, constants.SheetAliases, diff.Aliases.Updates, func(a entities.VehicleAlias) string { return Canon(a.Alias) })
}

func addNotices[T any](res *dtos.ValidationResult, sheet string, updates []dtos.DiffItem[T], label func(T) string) {
	for _, item := range updates {
		res.Add(dtos.ValidationIssue{
			Code:     constants.IssueUpdateNotice,
			Severity: constants.SeverityWarning,
			Message:  fmt.Sprintf("%q will change: %s", label(item.Row), strings.Join(item.ChangedFields, ", ")),
			Sheet:    sheet,
			Value:    label(item.Row),
		})
	}
}

// survivingSKUs is the set of part SKUs that will exist after the import is
// applied: adds, updated rows, and unchanged rows. Deleted parts are out, so
// a child row still referencing one is an orphan.
func survivingSKUs(diff *dtos.DiffResult) map[string]bool {
	out := make(map[string]bool)
	for _, item := range diff.Parts.Adds {
		out[Canon(item.Row.SKU)] = true
	}
	for _, item := range diff.Parts.Updates {
		out[Canon(item.Row.SKU)] = true
	}
	for _, item := range diff.Parts.Unchanged {
		out[Canon(item.Row.SKU)] = true
	}
	return out
}

// storeApplications collects the store-side application rows out of the diff.
func storeApplications(diff *dtos.DiffResult) []entities.VehicleApplication {
	var out []entities.VehicleApplication
	for _, item := range diff.Applications.Deletes {
		out = append(out, item.Row)
	}
	for _, item := range diff.Applications.Unchanged {
		out = append(out, item.Row)
	}
	for _, item := range diff.Applications.Updates {
		if item.Before != nil {
			out = append(out, *item.Before)
		}
	}
	return out
}

func storeCrossReferences(diff *dtos.DiffResult) []entities.CrossReference {
	var out []entities.CrossReference
	for _, item := range diff.CrossReferences.Deletes {
		out = append(out, item.Row)
	}
	for _, item := range diff.CrossReferences.Unchanged {
		out = append(out, item.Row)
	}
	for _, item := range diff.CrossReferences.Updates {
		if item.Before != nil {
			out = append(out, *item.Before)
		}
	}
	return out
}

func requireField(res *dtos.ValidationResult, sheet string, row int, column, value string) {
	if Canon(value) != "" {
		return
	}
	res.Add(dtos.ValidationIssue{
		Code:     constants.IssueMissingRequired,
		Severity: constants.SeverityError,
		Message:  fmt.Sprintf("%s is required", column),
		Sheet:    sheet,
		Row:      row,
		Column:   column,
	})
}

// checkOrphan flags child rows whose Part SKU does not resolve to a part that
// will survive the import.
func checkOrphan(res *dtos.ValidationResult, sheet string, row int, partSKU string, surviving map[string]bool) {
	sku := Canon(partSKU)
	if sku == "" || surviving[sku] {
		return
	}
	res.Add(dtos.ValidationIssue{
		Code:     constants.IssueOrphanedReference,
		Severity: constants.SeverityError,
		Message:  fmt.Sprintf("part %q does not exist in the file's Parts sheet", sku),
		Sheet:    sheet,
		Row:      row,
		Column:   workbook.ColPartSKU,
		Value:    sku,
	})
}

func checkID(res *dtos.ValidationResult, sheet string, row int, id string) {
	id = Canon(id)
	if id == "" {
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		res.Add(dtos.ValidationIssue{
			Code:     constants.IssueMalformedID,
			Severity: constants.SeverityError,
			Message:  "hidden identifier is not a valid record id; identifier columns must not be edited",
			Sheet:    sheet,
			Row:      row,
			Column:   workbook.ColRecordID,
			Value:    id,
		})
	}
}

func checkEnum(res *dtos.ValidationResult, sheet string, row int, column, value string, allowed []string) {
	v := Canon(value)
	if v == "" {
		return
	}
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	res.Add(dtos.ValidationIssue{
		Code:     constants.IssueInvalidEnum,
		Severity: constants.SeverityError,
		Message:  fmt.Sprintf("%s %q is not an allowed value", column, v),
		Sheet:    sheet,
		Row:      row,
		Column:   column,
		Value:    v,
		Expected: strings.Join(allowed, ", "),
	})
}
