package constants

const (
	SelectPartsPage = `
	SELECT id, sku, part_type, position_type, abs_type, bolt_pattern, drive_type, specifications, status, created_at, updated_at
	FROM parts
	ORDER BY sku
	LIMIT $1 OFFSET $2
	`

	InsertPart = `
	INSERT INTO parts (id, sku, part_type, position_type, abs_type, bolt_pattern, drive_type, specifications, status, created_at, updated_at)
	VALUES (:id, :sku, :part_type, :position_type, :abs_type, :bolt_pattern, :drive_type, :specifications, :status, :created_at, :updated_at)
	`

	UpdatePart = `
	UPDATE parts
	SET sku = :sku,
	    part_type = :part_type,
	    position_type = :position_type,
	    abs_type = :abs_type,
	    bolt_pattern = :bolt_pattern,
	    drive_type = :drive_type,
	    specifications = :specifications,
	    status = :status,
	    updated_at = :updated_at
	WHERE id = :id
	`

	DeletePartsByID = `DELETE FROM parts WHERE id = ANY($1)`
	DeleteAllParts  = `DELETE FROM parts`

	SelectApplicationsPage = `
	SELECT va.id, va.part_id, p.sku AS part_sku, va.make, va.model, va.start_year, va.end_year, va.created_at, va.updated_at
	FROM vehicle_applications va
	JOIN parts p ON p.id = va.part_id
	ORDER BY p.sku, va.make, va.model, va.id
	LIMIT $1 OFFSET $2
	`

	InsertApplication = `
	INSERT INTO vehicle_applications (id, part_id, make, model, start_year, end_year, created_at, updated_at)
	VALUES (:id, :part_id, :make, :model, :start_year, :end_year, :created_at, :updated_at)
	`

	UpdateApplication = `
	UPDATE vehicle_applications
	SET part_id = :part_id,
	    make = :make,
	    model = :model,
	    start_year = :start_year,
	    end_year = :end_year,
	    updated_at = :updated_at
	WHERE id = :id
	`

	DeleteApplicationsByID = `DELETE FROM vehicle_applications WHERE id = ANY($1)`
	DeleteAllApplications  = `DELETE FROM vehicle_applications`

	SelectCrossReferencesPage = `
	SELECT cr.id, cr.part_id, p.sku AS part_sku, cr.competitor_brand, cr.competitor_sku, cr.created_at, cr.updated_at
	FROM cross_references cr
	JOIN parts p ON p.id = cr.part_id
	ORDER BY p.sku, cr.competitor_brand, cr.competitor_sku, cr.id
	LIMIT $1 OFFSET $2
	`

	InsertCrossReference = `
	INSERT INTO cross_references (id, part_id, competitor_brand, competitor_sku, created_at, updated_at)
	VALUES (:id, :part_id, :competitor_brand, :competitor_sku, :created_at, :updated_at)
	`

	UpdateCrossReference = `
	UPDATE cross_references
	SET part_id = :part_id,
	    competitor_brand = :competitor_brand,
	    competitor_sku = :competitor_sku,
	    updated_at = :updated_at
	WHERE id = :id
	`

	DeleteCrossReferencesByID = `DELETE FROM cross_references WHERE id = ANY($1)`
	DeleteAllCrossReferences  = `DELETE FROM cross_references`

	SelectAliasesPage = `
	SELECT id, alias, canonical_name, alias_type, created_at, updated_at
	FROM vehicle_aliases
	ORDER BY alias
	LIMIT $1 OFFSET $2
	`

	InsertAlias = `
	INSERT INTO vehicle_aliases (id, alias, canonical_name, alias_type, created_at, updated_at)
	VALUES (:id, :alias, :canonical_name, :alias_type, :created_at, :updated_at)
	`

	UpdateAlias = `
	UPDATE vehicle_aliases
	SET alias = :alias,
	    canonical_name = :canonical_name,
	    alias_type = :alias_type,
	    updated_at = :updated_at
	WHERE id = :id
	`

	DeleteAliasesByID = `DELETE FROM vehicle_aliases WHERE id = ANY($1)`
	DeleteAllAliases  = `DELETE FROM vehicle_aliases`
)
