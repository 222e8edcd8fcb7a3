package workbook

import (
	"fmt"
	"strconv"

	"apexparts/catalogd/internal/models/entities"

	"github.com/xuri/excelize/v2"
)

// Build renders current store contents into the export workbook. The output
// round-trips: re-importing an unmodified export diffs to zero changes.
func Build(parts []entities.PartRecord, apps []entities.VehicleApplication, xrefs []entities.CrossReference, aliases []entities.VehicleAlias) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSheet(f, partsLayout, partRows(parts)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, applicationsLayout, applicationRows(apps)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, crossReferencesLayout, crossReferenceRows(xrefs)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, aliasesLayout, aliasRows(aliases)); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, layout sheetLayout, rows [][]any) error {
	if _, err := f.NewSheet(layout.Name); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(layout.Columns))
	if err != nil {
		return err
	}

	// Group header row, merged across the sheet's columns.
	if err := f.SetCellValue(layout.Name, fmt.Sprintf("A%d", rowGroupHeader), layout.GroupHeader); err != nil {
		return err
	}
	if len(layout.Columns) > 1 {
		if err := f.MergeCell(layout.Name, fmt.Sprintf("A%d", rowGroupHeader), fmt.Sprintf("%s%d", lastCol, rowGroupHeader)); err != nil {
			return err
		}
	}

	// Column headers.
	for i, col := range layout.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, rowColumnHeader)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(layout.Name, cell, col.Header); err != nil {
			return err
		}
	}

	// Instructions row.
	if err := f.SetCellValue(layout.Name, fmt.Sprintf("A%d", rowInstructions), layout.Instructions); err != nil {
		return err
	}

	// Data rows.
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, rowFirstData+r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(layout.Name, cell, value); err != nil {
				return err
			}
		}
	}

	// Hide identifier columns. They exist for round-trip matching only.
	for i, col := range layout.Columns {
		if !col.Hidden {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColVisible(layout.Name, name, false); err != nil {
			return err
		}
	}
	return nil
}

func partRows(parts []entities.PartRecord) [][]any {
	rows := make([][]any, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, []any{p.ID, p.SKU, p.PartType, p.PositionType, p.ABSType, p.BoltPattern, p.DriveType, p.Specifications, p.Status})
	}
	return rows
}

func applicationRows(apps []entities.VehicleApplication) [][]any {
	rows := make([][]any, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []any{a.ID, a.PartID, a.PartSKU, a.Make, a.Model, strconv.Itoa(a.StartYear), strconv.Itoa(a.EndYear)})
	}
	return rows
}

func crossReferenceRows(xrefs []entities.CrossReference) [][]any {
	rows := make([][]any, 0, len(xrefs))
	for _, x := range xrefs {
		rows = append(rows, []any{x.ID, x.PartID, x.PartSKU, x.CompetitorBrand, x.CompetitorSKU})
	}
	return rows
}

func aliasRows(aliases []entities.VehicleAlias) [][]any {
	rows := make([][]any, 0, len(aliases))
	for _, a := range aliases {
		rows = append(rows, []any{a.ID, a.Alias, a.CanonicalName, a.AliasType})
	}
	return rows
}
