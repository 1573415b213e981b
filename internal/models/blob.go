package models

import (
	"time"

	"jsonblob/internal/blobid"
)

// BlobRecord is a stored JSON document together with its lifecycle timestamps.
// The body is opaque to the store: it is validated as JSON on the way in and
// passed through unchanged on the way out.
type BlobRecord struct {
	ID         blobid.ID `json:"id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	AccessedAt time.Time `json:"accessed_at"`
}
