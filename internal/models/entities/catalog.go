package entities

import "time"

// PartRecord is a row in the governed parts table. Optional text fields use
// the empty string for "not set"; blank and null are treated as equivalent
// everywhere the reconciliation engine compares values.
type PartRecord struct {
	ID             string    `db:"id" json:"id"`
	SKU            string    `db:"sku" json:"sku"`
	PartType       string    `db:"part_type" json:"partType"`
	PositionType   string    `db:"position_type" json:"positionType,omitempty"`
	ABSType        string    `db:"abs_type" json:"absType,omitempty"`
	BoltPattern    string    `db:"bolt_pattern" json:"boltPattern,omitempty"`
	DriveType      string    `db:"drive_type" json:"driveType,omitempty"`
	Specifications string    `db:"specifications" json:"specifications,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// VehicleApplication links a part to a vehicle fitment range.
// PartSKU is not stored on the table; reads join it in from parts so the
// workbook and validation layers can address parents by business key.
type VehicleApplication struct {
	ID        string    `db:"id" json:"id"`
	PartID    string    `db:"part_id" json:"partId"`
	PartSKU   string    `db:"part_sku" json:"partSku"`
	Make      string    `db:"make" json:"make"`
	Model     string    `db:"model" json:"model"`
	StartYear int       `db:"start_year" json:"startYear"`
	EndYear   int       `db:"end_year" json:"endYear"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CrossReference maps a part to a competitor's catalog number.
type CrossReference struct {
	ID              string    `db:"id" json:"id"`
	PartID          string    `db:"part_id" json:"partId"`
	PartSKU         string    `db:"part_sku" json:"partSku"`
	CompetitorBrand string    `db:"competitor_brand" json:"competitorBrand"`
	CompetitorSKU   string    `db:"competitor_sku" json:"competitorSku"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// VehicleAlias normalizes vehicle naming. No FK to parts.
type VehicleAlias struct {
	ID            string    `db:"id" json:"id"`
	Alias         string    `db:"alias" json:"alias"`
	CanonicalName string    `db:"canonical_name" json:"canonicalName"`
	AliasType     string    `db:"alias_type" json:"aliasType"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
