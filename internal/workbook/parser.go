package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"

	"github.com/xuri/excelize/v2"
)

// SchemaError reports a structurally unusable workbook: a missing sheet or a
// missing required column. It is fatal to the import attempt and is reported
// before any diffing happens, unlike per-row validation issues.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "workbook schema error: " + strings.Join(e.Problems, "; ")
}

// ParsedWorkbook is the typed contents of one uploaded workbook. RowIssues
// carries cell-level problems (e.g. non-numeric years) discovered while
// mapping rows; the validation engine folds them into its result.
type ParsedWorkbook struct {
	Parts           []dtos.FileRow[entities.PartRecord]
	Applications    []dtos.FileRow[entities.VehicleApplication]
	CrossReferences []dtos.FileRow[entities.CrossReference]
	Aliases         []dtos.FileRow[entities.VehicleAlias]
	RowIssues       []dtos.ValidationIssue
}

// Parse reads a catalog workbook. It returns a *SchemaError when the
// workbook structure itself is unusable.
func Parse(r io.Reader) (*ParsedWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &SchemaError{Problems: []string{fmt.Sprintf("unreadable workbook: %v", err)}}
	}
	defer f.Close()

	sheets := make(map[string]*sheetData, len(allLayouts))
	var problems []string
	for _, layout := range allLayouts {
		data, sheetProblems := readSheet(f, layout)
		problems = append(problems, sheetProblems...)
		sheets[layout.Name] = data
	}
	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	wb := &ParsedWorkbook{}
	wb.parseParts(sheets[constants.SheetParts])
	wb.parseApplications(sheets[constants.SheetApplications])
	wb.parseCrossReferences(sheets[constants.SheetCrossReferences])
	wb.parseAliases(sheets[constants.SheetAliases])
	return wb, nil
}

// sheetData is one sheet's rows plus its header index.
type sheetData struct {
	layout  sheetLayout
	headers map[string]int
	rows    [][]string // data rows only; row number = rowFirstData + index
}

func readSheet(f *excelize.File, layout sheetLayout) (*sheetData, []string) {
	rows, err := f.GetRows(layout.Name)
	if err != nil {
		return nil, []string{fmt.Sprintf("missing sheet %q", layout.Name)}
	}
	if len(rows) < rowColumnHeader {
		return nil, []string{fmt.Sprintf("sheet %q has no header row", layout.Name)}
	}

	headers := make(map[string]int)
	for i, h := range rows[rowColumnHeader-1] {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var problems []string
	for _, required := range layout.requiredHeaders() {
		if _, ok := headers[strings.ToLower(required)]; !ok {
			problems = append(problems, fmt.Sprintf("sheet %q is missing column %q", layout.Name, required))
		}
	}
	if len(problems) > 0 {
		return nil, problems
	}

	var data [][]string
	if len(rows) > rowInstructions {
		data = rows[rowInstructions:]
	}
	return &sheetData{layout: layout, headers: headers, rows: data}, nil
}

func (s *sheetData) cell(row []string, header string) string {
	idx, ok := s.headers[strings.ToLower(header)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (wb *ParsedWorkbook) parseParts(s *sheetData) {
	for i, row := range s.rows {
		if emptyRow(row) {
			continue
		}
		rowNum := rowFirstData + i
		wb.Parts = append(wb.Parts, dtos.FileRow[entities.PartRecord]{
			RowNum: rowNum,
			Record: entities.PartRecord{
				ID:             s.cell(row, ColRecordID),
				SKU:            s.cell(row, ColSKU),
				PartType:       s.cell(row, ColPartType),
				PositionType:   s.cell(row, ColPositionType),
				ABSType:        s.cell(row, ColABSType),
				BoltPattern:    s.cell(row, ColBoltPattern),
				DriveType:      s.cell(row, ColDriveType),
				Specifications: s.cell(row, ColSpecifications),
				Status:         s.cell(row, ColStatus),
			},
		})
	}
}

func (wb *ParsedWorkbook) parseApplications(s *sheetData) {
	for i, row := range s.rows {
		if emptyRow(row) {
			continue
		}
		rowNum := rowFirstData + i
		rec := entities.VehicleApplication{
			ID:      s.cell(row, ColRecordID),
			PartID:  s.cell(row, ColPartID),
			PartSKU: s.cell(row, ColPartSKU),
			Make:    s.cell(row, ColMake),
			Model:   s.cell(row, ColModel),
		}
		rec.StartYear = wb.parseYear(s, row, rowNum, ColStartYear)
		rec.EndYear = wb.parseYear(s, row, rowNum, ColEndYear)
		wb.Applications = append(wb.Applications, dtos.FileRow[entities.VehicleApplication]{RowNum: rowNum, Record: rec})
	}
}

func (wb *ParsedWorkbook) parseCrossReferences(s *sheetData) {
	for i, row := range s.rows {
		if emptyRow(row) {
			continue
		}
		wb.CrossReferences = append(wb.CrossReferences, dtos.FileRow[entities.CrossReference]{
			RowNum: rowFirstData + i,
			Record: entities.CrossReference{
				ID:              s.cell(row, ColRecordID),
				PartID:          s.cell(row, ColPartID),
				PartSKU:         s.cell(row, ColPartSKU),
				CompetitorBrand: s.cell(row, ColCompetitorBrand),
				CompetitorSKU:   s.cell(row, ColCompetitorSKU),
			},
		})
	}
}

func (wb *ParsedWorkbook) parseAliases(s *sheetData) {
	for i, row := range s.rows {
		if emptyRow(row) {
			continue
		}
		wb.Aliases = append(wb.Aliases, dtos.FileRow[entities.VehicleAlias]{
			RowNum: rowFirstData + i,
			Record: entities.VehicleAlias{
				ID:            s.cell(row, ColRecordID),
				Alias:         s.cell(row, ColAlias),
				CanonicalName: s.cell(row, ColCanonicalName),
				AliasType:     s.cell(row, ColAliasType),
			},
		})
	}
}

// parseYear maps a year cell to an int, recording an issue for values that
// are present but not numeric. Empty cells map to 0 and are left to the
// required-field checks.
func (wb *ParsedWorkbook) parseYear(s *sheetData, row []string, rowNum int, header string) int {
	raw := s.cell(row, header)
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		wb.RowIssues = append(wb.RowIssues, dtos.ValidationIssue{
			Code:     constants.IssueUnparseableValue,
			Severity: constants.SeverityError,
			Message:  fmt.Sprintf("%s must be a whole number", header),
			Sheet:    s.layout.Name,
			Row:      rowNum,
			Column:   header,
			Value:    raw,
			Expected: "integer year",
		})
		return 0
	}
	return year
}
