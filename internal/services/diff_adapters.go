package services

import (
	"fmt"

	"apexparts/catalogd/internal/constants"
	"apexparts/catalogd/internal/models/entities"
	"apexparts/catalogd/internal/workbook"
)

// Changed-field names use the workbook column headers so the review surface
// and the update notices speak the operator's language.

func partAdapter() EntityAdapter[entities.PartRecord] {
	return EntityAdapter[entities.PartRecord]{
		Sheet: constants.SheetParts,
		ID:    func(p entities.PartRecord) string { return p.ID },
		Key:   func(p entities.PartRecord) string { return Canon(p.SKU) },
		Tombstone: func(p entities.PartRecord) bool {
			return Canon(p.Status) == string(constants.PartStatusDelete)
		},
		Compare: func(store, file entities.PartRecord) []string {
			var changed []string
			fields := []struct {
				name          string
				before, after string
			}{
				{workbook.ColSKU, store.SKU, file.SKU},
				{workbook.ColPartType, store.PartType, file.PartType},
				{workbook.ColPositionType, store.PositionType, file.PositionType},
				{workbook.ColABSType, store.ABSType, file.ABSType},
				{workbook.ColBoltPattern, store.BoltPattern, file.BoltPattern},
				{workbook.ColDriveType, store.DriveType, file.DriveType},
				{workbook.ColSpecifications, store.Specifications, file.Specifications},
				{workbook.ColStatus, store.Status, file.Status},
			}
			for _, f := range fields {
				if !canonEqual(f.before, f.after) {
					changed = append(changed, f.name)
				}
			}
			return changed
		},
		Merge: func(store, file entities.PartRecord) entities.PartRecord {
			after := file
			after.ID = store.ID
			after.CreatedAt = store.CreatedAt
			return after
		},
	}
}

func applicationAdapter() EntityAdapter[entities.VehicleApplication] {
	return EntityAdapter[entities.VehicleApplication]{
		Sheet: constants.SheetApplications,
		ID:    func(a entities.VehicleApplication) string { return a.ID },
		Key: func(a entities.VehicleApplication) string {
			return fmt.Sprintf("%s|%s|%s|%04d", Canon(a.PartSKU), Canon(a.Make), Canon(a.Model), a.StartYear)
		},
		Compare: func(store, file entities.VehicleApplication) []string {
			var changed []string
			if !canonEqual(store.PartSKU, file.PartSKU) {
				changed = append(changed, workbook.ColPartSKU)
			}
			if !canonEqual(store.Make, file.Make) {
				changed = append(changed, workbook.ColMake)
			}
			if !canonEqual(store.Model, file.Model) {
				changed = append(changed, workbook.ColModel)
			}
			// Years compare as integers; no locale coercion.
			if store.StartYear != file.StartYear {
				changed = append(changed, workbook.ColStartYear)
			}
			if store.EndYear != file.EndYear {
				changed = append(changed, workbook.ColEndYear)
			}
			return changed
		},
		Merge: func(store, file entities.VehicleApplication) entities.VehicleApplication {
			after := file
			after.ID = store.ID
			after.CreatedAt = store.CreatedAt
			if Canon(after.PartID) == "" {
				after.PartID = store.PartID
			}
			return after
		},
	}
}

func crossReferenceAdapter() EntityAdapter[entities.CrossReference] {
	return EntityAdapter[entities.CrossReference]{
		Sheet: constants.SheetCrossReferences,
		ID:    func(x entities.CrossReference) string { return x.ID },
		Key: func(x entities.CrossReference) string {
			return fmt.Sprintf("%s|%s|%s", Canon(x.PartSKU), Canon(x.CompetitorBrand), Canon(x.CompetitorSKU))
		},
		Compare: func(store, file entities.CrossReference) []string {
			var changed []string
			if !canonEqual(store.PartSKU, file.PartSKU) {
				changed = append(changed, workbook.ColPartSKU)
			}
			if !canonEqual(store.CompetitorBrand, file.CompetitorBrand) {
				changed = append(changed, workbook.ColCompetitorBrand)
			}
			if !canonEqual(store.CompetitorSKU, file.CompetitorSKU) {
				changed = append(changed, workbook.ColCompetitorSKU)
			}
			return changed
		},
		Merge: func(store, file entities.CrossReference) entities.CrossReference {
			after := file
			after.ID = store.ID
			after.CreatedAt = store.CreatedAt
			if Canon(after.PartID) == "" {
				after.PartID = store.PartID
			}
			return after
		},
	}
}

func aliasAdapter() EntityAdapter[entities.VehicleAlias] {
	return EntityAdapter[entities.VehicleAlias]{
		Sheet: constants.SheetAliases,
		ID:    func(a entities.VehicleAlias) string { return a.ID },
		Key:   func(a entities.VehicleAlias) string { return Canon(a.Alias) },
		Compare: func(store, file entities.VehicleAlias) []string {
			var changed []string
			if !canonEqual(store.Alias, file.Alias) {
				changed = append(changed, workbook.ColAlias)
			}
			if !canonEqual(store.CanonicalName, file.CanonicalName) {
				changed = append(changed, workbook.ColCanonicalName)
			}
			if !canonEqual(store.AliasType, file.AliasType) {
				changed = append(changed, workbook.ColAliasType)
			}
			return changed
		},
		Merge: func(store, file entities.VehicleAlias) entities.VehicleAlias {
			after := file
			after.ID = store.ID
			after.CreatedAt = store.CreatedAt
			return after
		},
	}
}
