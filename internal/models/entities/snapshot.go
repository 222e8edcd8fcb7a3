package entities

import "time"

// ImportSnapshot is a full point-in-time copy of every governed table,
// captured immediately before an import mutates the store. It is embedded in
// the import history row and is what rollback restores from.
type ImportSnapshot struct {
	Parts           []PartRecord         `json:"parts"`
	Applications    []VehicleApplication `json:"applications"`
	CrossReferences []CrossReference     `json:"crossReferences"`
	Aliases         []VehicleAlias       `json:"aliases"`
	CapturedAt      time.Time            `json:"capturedAt"`
}
