package models

import "github.com/google/uuid"

// RootBreakdown aggregates items per top-level subtree.
type RootBreakdown struct {
	RootID        uuid.UUID `json:"root_id"`
	RootName      string    `json:"root_name"`
	ItemCount     int       `json:"item_count"`
	TotalQuantity int       `json:"total_quantity"`
}

// OwnerStats is the dashboard aggregate for one user.
type OwnerStats struct {
	LocationCount int              `json:"location_count"`
	ItemCount     int              `json:"item_count"`
	TotalQuantity int              `json:"total_quantity"`
	RootBreakdown []*RootBreakdown `json:"root_breakdown"`
	RecentItems   []*Item          `json:"recent_items"`
}
