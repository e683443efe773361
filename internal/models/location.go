package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a node in a user's storage tree. PathNames and PathIDs cache
// the ancestor chain from the top-level root down to and including the node
// itself, so reads never walk parent pointers; every structural mutation
// rewrites the cached columns for the whole affected subtree in one batch.
type Location struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	OwnerID   uuid.UUID   `json:"owner_id" db:"owner_id"`
	ParentID  *uuid.UUID  `json:"parent_id" db:"parent_id"`
	Name      string      `json:"name" db:"name"`
	PathNames []string    `json:"path_names" db:"path_names"`
	PathIDs   []uuid.UUID `json:"path_ids" db:"path_ids"`
	Depth     int         `json:"depth" db:"depth"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// TreeNode is the flat per-node shape returned by the tree endpoint,
// ordered by depth then name.
type TreeNode struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Name     string     `json:"name"`
	Depth    int        `json:"depth"`
}

// LocationUsage carries the counts consulted before a delete: direct
// children, items held directly, and items anywhere in the subtree
// including the location itself.
type LocationUsage struct {
	ChildCount       int `json:"child_count"`
	ItemCount        int `json:"item_count"`
	SubtreeItemCount int `json:"subtree_item_count"`
}
