package models

import (
	"time"

	"github.com/google/uuid"
)

type JSONB map[string]interface{}

// Activity records one mutation against a user's tree or items.
type Activity struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OwnerID    uuid.UUID `json:"owner_id" db:"owner_id"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	Action     string    `json:"action" db:"action"`
	Detail     JSONB     `json:"detail" db:"detail"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Entity types for activity entries
const (
	EntityLocation = "location"
	EntityItem     = "item"
)

// Actions for activity entries
const (
	ActionCreate = "create"
	ActionRename = "rename"
	ActionMove   = "move"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
