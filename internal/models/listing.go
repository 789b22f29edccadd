package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a unit under review, grouped into batches.
// Listings are append-only: created on first submission, never updated.
type Listing struct {
	ID            uuid.UUID `json:"id"`
	Batch         string    `json:"batch"`
	ListingIDText string    `json:"listing_id"`
	CreatedAt     time.Time `json:"created_at"`
}
