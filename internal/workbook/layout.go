// Package workbook reads and writes the multi-sheet catalog spreadsheet used
// for bulk editing. Every sheet shares one fixed layout: a group header row,
// a column header row, an instructions row, then data rows. The leading
// columns carry store primary keys and are hidden in exports; they exist only
// so edited rows can be matched back to the records they came from.
package workbook

import "apexparts/catalogd/internal/constants"

const (
	rowGroupHeader  = 1
	rowColumnHeader = 2
	rowInstructions = 3
	rowFirstData    = 4
)

// Column headers, shared between the parser and the export builder.
const (
	ColRecordID        = "Record ID"
	ColPartID          = "Part ID"
	ColSKU             = "SKU"
	ColPartType        = "Part Type"
	ColPositionType    = "Position Type"
	ColABSType         = "ABS Type"
	ColBoltPattern     = "Bolt Pattern"
	ColDriveType       = "Drive Type"
	ColSpecifications  = "Specifications"
	ColStatus          = "Status"
	ColPartSKU         = "Part SKU"
	ColMake            = "Make"
	ColModel           = "Model"
	ColStartYear       = "Start Year"
	ColEndYear         = "End Year"
	ColCompetitorBrand = "Competitor Brand"
	ColCompetitorSKU   = "Competitor SKU"
	ColAlias           = "Alias"
	ColCanonicalName   = "Canonical Name"
	ColAliasType       = "Alias Type"
)

// column describes one worksheet column.
type column struct {
	Header   string
	Hidden   bool
	Required bool
}

// sheetLayout describes one worksheet.
type sheetLayout struct {
	Name         string
	GroupHeader  string
	Instructions string
	Columns      []column
}

var partsLayout = sheetLayout{
	Name:         constants.SheetParts,
	GroupHeader:  "Catalog Parts",
	Instructions: "Do not edit the Record ID column. Leave it empty for new parts. Set Status to \"delete\" to remove a part.",
	Columns: []column{
		{Header: ColRecordID, Hidden: true},
		{Header: ColSKU, Required: true},
		{Header: ColPartType, Required: true},
		{Header: ColPositionType},
		{Header: ColABSType},
		{Header: ColBoltPattern},
		{Header: ColDriveType},
		{Header: ColSpecifications},
		{Header: ColStatus, Required: true},
	},
}

var applicationsLayout = sheetLayout{
	Name:         constants.SheetApplications,
	GroupHeader:  "Vehicle Fitment",
	Instructions: "Do not edit the Record ID or Part ID columns. Reference parts by Part SKU.",
	Columns: []column{
		{Header: ColRecordID, Hidden: true},
		{Header: ColPartID, Hidden: true},
		{Header: ColPartSKU, Required: true},
		{Header: ColMake, Required: true},
		{Header: ColModel, Required: true},
		{Header: ColStartYear, Required: true},
		{Header: ColEndYear, Required: true},
	},
}

var crossReferencesLayout = sheetLayout{
	Name:         constants.SheetCrossReferences,
	GroupHeader:  "Competitor Cross References",
	Instructions: "Do not edit the Record ID or Part ID columns. Reference parts by Part SKU.",
	Columns: []column{
		{Header: ColRecordID, Hidden: true},
		{Header: ColPartID, Hidden: true},
		{Header: ColPartSKU, Required: true},
		{Header: ColCompetitorBrand, Required: true},
		{Header: ColCompetitorSKU, Required: true},
	},
}

var aliasesLayout = sheetLayout{
	Name:         constants.SheetAliases,
	GroupHeader:  "Vehicle Name Aliases",
	Instructions: "Do not edit the Record ID column.",
	Columns: []column{
		{Header: ColRecordID, Hidden: true},
		{Header: ColAlias, Required: true},
		{Header: ColCanonicalName, Required: true},
		{Header: ColAliasType, Required: true},
	},
}

var allLayouts = []sheetLayout{partsLayout, applicationsLayout, crossReferencesLayout, aliasesLayout}

func (l sheetLayout) requiredHeaders() []string {
	var out []string
	for _, c := range l.Columns {
		if c.Required || c.Hidden {
			out = append(out, c.Header)
		}
	}
	return out
}
