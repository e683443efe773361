package jobs

import (
	"context"
	"fmt"
	"slices"

	"homestock/internal/models"
	"homestock/internal/pathtree"
	"homestock/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TreeAuditor walks every owner's location forest and reports rows whose
// cached path columns disagree with the parent links. It never repairs
// anything; the report is for operators.
type TreeAuditor struct {
	locationRepo repositories.LocationRepository
	logger       zerolog.Logger
}

func NewTreeAuditor(locationRepo repositories.LocationRepository, logger zerolog.Logger) *TreeAuditor {
	return &TreeAuditor{
		locationRepo: locationRepo,
		logger:       logger.With().Str("component", "tree_audit").Logger(),
	}
}

// AuditReport aggregates the findings of one audit run.
type AuditReport struct {
	OwnersChecked   int
	RowsChecked     int
	InvalidPaths    int // rows failing pathtree.Validate
	StalePaths      int // rows whose cached path disagrees with the parent's
	OrphanedRows    int // rows whose parent_id points at a missing row
	ScopeMismatches int // roots where BFS and the recursive CTE disagree
}

func (r *AuditReport) clean() bool {
	return r.InvalidPaths == 0 && r.StalePaths == 0 && r.OrphanedRows == 0 && r.ScopeMismatches == 0
}

// Run audits every owner's tree and returns the combined report.
func (a *TreeAuditor) Run(ctx context.Context) (*AuditReport, error) {
	owners, err := a.locationRepo.OwnerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}

	report := &AuditReport{}
	for _, ownerID := range owners {
		if err := a.auditOwner(ctx, ownerID, report); err != nil {
			return nil, fmt.Errorf("audit owner %s: %w", ownerID, err)
		}
		report.OwnersChecked++
	}

	event := a.logger.Info()
	if !report.clean() {
		event = a.logger.Warn()
	}
	event.
		Int("owners", report.OwnersChecked).
		Int("rows", report.RowsChecked).
		Int("invalid_paths", report.InvalidPaths).
		Int("stale_paths", report.StalePaths).
		Int("orphaned_rows", report.OrphanedRows).
		Int("scope_mismatches", report.ScopeMismatches).
		Msg("tree audit finished")

	return report, nil
}

func (a *TreeAuditor) auditOwner(ctx context.Context, ownerID uuid.UUID, report *AuditReport) error {
	locations, err := a.locationRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	children := make(map[uuid.UUID][]uuid.UUID)
	var roots []*models.Location

	for _, loc := range locations {
		report.RowsChecked++

		if err := pathtree.Validate(loc); err != nil {
			report.InvalidPaths++
			a.logger.Warn().
				Str("owner_id", ownerID.String()).
				Str("location_id", loc.ID.String()).
				Str("reason", err.Error()).
				Msg("cached path fails validation")
		}

		if loc.ParentID == nil {
			roots = append(roots, loc)
			continue
		}

		parent, ok := byID[*loc.ParentID]
		if !ok {
			report.OrphanedRows++
			a.logger.Warn().
				Str("owner_id", ownerID.String()).
				Str("location_id", loc.ID.String()).
				Str("parent_id", loc.ParentID.String()).
				Msg("parent link points at a missing row")
			continue
		}
		children[parent.ID] = append(children[parent.ID], loc.ID)

		// A row can be internally consistent yet carry a prefix its parent
		// no longer has. Recompute from the parent and compare.
		wantNames, wantIDs, wantDepth := pathtree.ChildPath(parent, loc.ID, loc.Name)
		if !slices.Equal(wantNames, loc.PathNames) || !slices.Equal(wantIDs, loc.PathIDs) || wantDepth != loc.Depth {
			report.StalePaths++
			a.logger.Warn().
				Str("owner_id", ownerID.String()).
				Str("location_id", loc.ID.String()).
				Strs("cached_path", loc.PathNames).
				Strs("expected_path", wantNames).
				Msg("cached path disagrees with parent")
		}
	}

	// The CTE resolver is what search and move trust at runtime. Walking the
	// parent links breadth-first is an independent second opinion.
	for _, root := range roots {
		bfsSet := bfsDescendants(root.ID, children)

		cteIDs, err := a.locationRepo.DescendantIDs(ctx, ownerID, root.ID)
		if err != nil {
			return fmt.Errorf("descendants of %s: %w", root.ID, err)
		}
		cteSet := make(map[uuid.UUID]struct{}, len(cteIDs))
		for _, id := range cteIDs {
			cteSet[id] = struct{}{}
		}

		missing, extra := diffSets(bfsSet, cteSet)
		if missing == 0 && extra == 0 {
			continue
		}
		report.ScopeMismatches++
		a.logger.Warn().
			Str("owner_id", ownerID.String()).
			Str("root_id", root.ID.String()).
			Int("missing_from_cte", missing).
			Int("extra_in_cte", extra).
			Msg("descendant scope disagrees between walk and query")
	}

	return nil
}

// bfsDescendants collects the strict descendants of rootID by walking the
// in-memory child index level by level.
func bfsDescendants(rootID uuid.UUID, children map[uuid.UUID][]uuid.UUID) map[uuid.UUID]struct{} {
	found := make(map[uuid.UUID]struct{})
	queue := slices.Clone(children[rootID])
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := found[id]; seen {
			continue
		}
		found[id] = struct{}{}
		queue = append(queue, children[id]...)
	}
	return found
}

func diffSets(want, got map[uuid.UUID]struct{}) (missing, extra int) {
	for id := range want {
		if _, ok := got[id]; !ok {
			missing++
		}
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			extra++
		}
	}
	return missing, extra
}
