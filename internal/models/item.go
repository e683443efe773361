package models

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	LocationID  uuid.UUID `json:"location_id" db:"location_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ItemSearchFilter holds search criteria for item queries. LocationIDs is
// the already-expanded subtree scope (the filter location plus all of its
// descendants), never a single raw id.
type ItemSearchFilter struct {
	Query       string      `json:"query,omitempty"`
	LocationIDs []uuid.UUID `json:"location_ids,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Offset      int         `json:"offset,omitempty"`
}

// ItemSearchHit is one search result row; LocationPath is the holding
// location's cached name path resolved live via a join at read time.
type ItemSearchHit struct {
	Item
	LocationPath []string `json:"location_path" db:"-"`
}

// ItemSearchResult is one page of hits plus paging metadata.
type ItemSearchResult struct {
	Items   []*ItemSearchHit `json:"items"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
}
