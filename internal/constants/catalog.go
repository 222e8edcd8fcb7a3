package constants

// PartStatus is the workflow status carried on every part row.
type PartStatus string

const (
	PartStatusActive   PartStatus = "active"
	PartStatusInactive PartStatus = "inactive"
	// PartStatusDelete is the in-row tombstone: a row carrying it is
	// classified as a delete regardless of presence in the file.
	PartStatusDelete PartStatus = "delete"
)

// AliasType constrains the vehicle alias kind.
type AliasType string

const (
	AliasTypeMake  AliasType = "make"
	AliasTypeModel AliasType = "model"
	AliasTypeTrim  AliasType = "trim"
)

// Sheet names inside the catalog workbook. The export writes these and the
// parser requires them; a workbook missing one is a schema error.
const (
	SheetParts           = "Parts"
	SheetApplications    = "Vehicle Applications"
	SheetCrossReferences = "Cross References"
	SheetAliases         = "Vehicle Aliases"
)

// Enumerated domain values validated on part rows.
var (
	PartTypes     = []string{"Disco", "Tambor", "Cubo", "Kit"}
	PositionTypes = []string{"Dianteira", "Traseira"}
	ABSTypes      = []string{"Com ABS", "Sem ABS"}
	DriveTypes    = []string{"4x2", "4x4"}
	PartStatuses  = []string{string(PartStatusActive), string(PartStatusInactive), string(PartStatusDelete)}
	AliasTypes    = []string{string(AliasTypeMake), string(AliasTypeModel), string(AliasTypeTrim)}
)

// MinVehicleYear bounds the plausible start of vehicle application ranges.
const MinVehicleYear = 1940
