package services

import (
	"context"
	"time"

	"apexparts/catalogd/internal/db/repositories"
	"apexparts/catalogd/internal/logging"
	"apexparts/catalogd/internal/metrics"
	"apexparts/catalogd/internal/models/dtos"
	"apexparts/catalogd/internal/models/entities"
	"apexparts/catalogd/internal/workbook"

	"golang.org/x/sync/errgroup"
)

// DiffService assembles store state and classifies a parsed workbook
// against it.
type DiffService struct {
	repo    repositories.CatalogRepository
	metrics *metrics.MetricsRegistry
}

func NewDiffService(repo repositories.CatalogRepository, reg *metrics.MetricsRegistry) *DiffService {
	return &DiffService{repo: repo, metrics: reg}
}

// storeContents is one consistent read of every governed table.
type storeContents struct {
	Parts           []entities.PartRecord
	Applications    []entities.VehicleApplication
	CrossReferences []entities.CrossReference
	Aliases         []entities.VehicleAlias
}

// fetchStore reads all four governed tables. The four reads are independent
// and run concurrently; everything downstream of them is ordered.
func fetchStore(ctx context.Context, repo repositories.CatalogRepository) (*storeContents, error) {
	var store storeContents
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		store.Parts, err = repo.FetchAllParts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		store.Applications, err = repo.FetchAllApplications(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		store.CrossReferences, err = repo.FetchAllCrossReferences(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		store.Aliases, err = repo.FetchAllAliases(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &store, nil
}

// Diff computes the full classification of a parsed workbook against the
// live store.
func (s *DiffService) Diff(ctx context.Context, wb *workbook.ParsedWorkbook) (*dtos.DiffResult, error) {
	started := time.Now()

	store, err := fetchStore(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	result := &dtos.DiffResult{}
	var issues []dtos.ValidationIssue

	var sheetIssues []dtos.ValidationIssue
	result.Parts, sheetIssues = diffSheet(partAdapter(), wb.Parts, store.Parts)
	issues = append(issues, sheetIssues...)

	result.Applications, sheetIssues = diffSheet(applicationAdapter(), wb.Applications, store.Applications)
	issues = append(issues, sheetIssues...)

	result.CrossReferences, sheetIssues = diffSheet(crossReferenceAdapter(), wb.CrossReferences, store.CrossReferences)
	issues = append(issues, sheetIssues...)

	result.Aliases, sheetIssues = diffSheet(aliasAdapter(), wb.Aliases, store.Aliases)
	issues = append(issues, sheetIssues...)

	result.RowIssues = issues
	result.Recount()

	if s.metrics != nil {
		s.metrics.DiffsComputedTotal.Inc()
		s.metrics.DiffDuration.Observe(time.Since(started).Seconds())
	}
	logging.Info("Workbook diff computed",
		"total_adds", result.Summary.TotalAdds,
		"total_updates", result.Summary.TotalUpdates,
		"total_deletes", result.Summary.TotalDeletes,
		"row_issues", len(issues),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}
