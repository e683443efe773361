// Package pathtree computes the cached materialized-path columns
// (path_names, path_ids, depth) for locations. It is pure: callers load the
// affected rows, pathtree rewrites them in memory, and the repository
// persists the result in one batch.
package pathtree

import (
	"fmt"

	"homestock/internal/models"

	"github.com/google/uuid"
)

// ChildPath returns the cached path columns for a node placed under parent.
// A nil parent makes the node top-level: path of length 1, depth 0.
func ChildPath(parent *models.Location, id uuid.UUID, name string) ([]string, []uuid.UUID, int) {
	if parent == nil {
		return []string{name}, []uuid.UUID{id}, 0
	}
	names := make([]string, 0, len(parent.PathNames)+1)
	names = append(names, parent.PathNames...)
	names = append(names, name)

	ids := make([]uuid.UUID, 0, len(parent.PathIDs)+1)
	ids = append(ids, parent.PathIDs...)
	ids = append(ids, id)

	return names, ids, parent.Depth + 1
}

// Rename rewrites node's trailing path element to newName and replaces the
// matching prefix on every descendant, keeping suffixes intact. Ids and
// depths never change on rename. Returns the rows whose cached fields were
// rewritten, node first. Descendants whose cached path does not start with
// node's id chain are left alone; stale rows are the audit's business, and
// an equally named sibling's subtree must never be touched.
func Rename(node *models.Location, newName string, descendants []*models.Location) []*models.Location {
	prefixLen := len(node.PathNames)

	node.Name = newName
	names := make([]string, prefixLen)
	copy(names, node.PathNames)
	names[prefixLen-1] = newName
	node.PathNames = names

	changed := make([]*models.Location, 0, len(descendants)+1)
	changed = append(changed, node)

	for _, d := range descendants {
		if len(d.PathNames) <= prefixLen || !HasIDPrefix(d.PathIDs, node.PathIDs) {
			continue
		}
		rewritten := make([]string, 0, len(d.PathNames))
		rewritten = append(rewritten, node.PathNames...)
		rewritten = append(rewritten, d.PathNames[prefixLen:]...)
		d.PathNames = rewritten
		changed = append(changed, d)
	}

	return changed
}

// Rebase recomputes node's path under newParent (nil means root), replaces
// the old prefix on every descendant, and shifts descendant depths by the
// same signed delta. Returns the rows whose cached fields were rewritten,
// node first. Callers must have validated the move already; Rebase assumes
// newParent is neither node nor inside node's subtree.
func Rebase(node *models.Location, newParent *models.Location, descendants []*models.Location) []*models.Location {
	oldIDs := node.PathIDs
	oldLen := len(oldIDs)
	oldDepth := node.Depth

	newNames, newIDs, newDepth := ChildPath(newParent, node.ID, node.Name)
	node.PathNames = newNames
	node.PathIDs = newIDs
	node.Depth = newDepth
	if newParent == nil {
		node.ParentID = nil
	} else {
		pid := newParent.ID
		node.ParentID = &pid
	}

	delta := newDepth - oldDepth

	changed := make([]*models.Location, 0, len(descendants)+1)
	changed = append(changed, node)

	for _, d := range descendants {
		if len(d.PathIDs) <= oldLen || !HasIDPrefix(d.PathIDs, oldIDs) {
			continue
		}
		names := make([]string, 0, len(d.PathNames)-oldLen+len(newNames))
		names = append(names, newNames...)
		names = append(names, d.PathNames[oldLen:]...)
		ids := make([]uuid.UUID, 0, len(d.PathIDs)-oldLen+len(newIDs))
		ids = append(ids, newIDs...)
		ids = append(ids, d.PathIDs[oldLen:]...)

		d.PathNames = names
		d.PathIDs = ids
		d.Depth += delta
		changed = append(changed, d)
	}

	return changed
}

// HasIDPrefix reports whether path begins with exactly the prefix chain.
func HasIDPrefix(path, prefix []uuid.UUID) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Validate checks the cached-path invariants on a single row. A row created
// through the degraded parent-missing fallback fails here with the parent
// mismatch error, which is how the audit surfaces it.
func Validate(loc *models.Location) error {
	if loc.Depth < 0 {
		return fmt.Errorf("depth %d is negative", loc.Depth)
	}
	if len(loc.PathNames) != loc.Depth+1 {
		return fmt.Errorf("path_names length %d does not match depth %d", len(loc.PathNames), loc.Depth)
	}
	if len(loc.PathIDs) != len(loc.PathNames) {
		return fmt.Errorf("path_ids length %d does not match path_names length %d", len(loc.PathIDs), len(loc.PathNames))
	}
	if loc.PathNames[len(loc.PathNames)-1] != loc.Name {
		return fmt.Errorf("path_names ends with %q, want %q", loc.PathNames[len(loc.PathNames)-1], loc.Name)
	}
	if loc.PathIDs[len(loc.PathIDs)-1] != loc.ID {
		return fmt.Errorf("path_ids ends with %s, want own id %s", loc.PathIDs[len(loc.PathIDs)-1], loc.ID)
	}
	if loc.ParentID == nil {
		if loc.Depth != 0 {
			return fmt.Errorf("root node has depth %d", loc.Depth)
		}
		return nil
	}
	if *loc.ParentID == loc.ID {
		return fmt.Errorf("node is its own parent")
	}
	if loc.Depth == 0 {
		return fmt.Errorf("parent %s set but cached path is top-level", *loc.ParentID)
	}
	if loc.PathIDs[loc.Depth-1] != *loc.ParentID {
		return fmt.Errorf("cached ancestor %s does not match parent %s", loc.PathIDs[loc.Depth-1], *loc.ParentID)
	}
	return nil
}
