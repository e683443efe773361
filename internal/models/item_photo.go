package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemPhoto references one object in the photo bucket. The binary itself
// lives in MinIO under ObjectKey; rows cascade with their item.
type ItemPhoto struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
