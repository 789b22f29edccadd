package models

import (
	"time"

	"github.com/google/uuid"
)

// Observation records a single filled/empty determination for one
// listing+field pair, attributed to an analyst at a point in time.
// Multiple observations may exist for the same pair; reads use the
// latest one.
type Observation struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	FieldID   uuid.UUID `json:"field_id"`
	Filled    bool      `json:"filled"`
	RawText   string    `json:"raw_text"`
	Analyst   string    `json:"analyst"`
	CheckedAt time.Time `json:"checked_at"`
}

// ObservationRow is an observation joined with its listing text and
// field canonical name, as exported to CSV.
type ObservationRow struct {
	ListingIDText string    `json:"listing_id"`
	Canonical     string    `json:"field"`
	Filled        bool      `json:"filled"`
	Analyst       string    `json:"analyst"`
	CheckedAt     time.Time `json:"checked_at"`
}

// ListingFieldStatus is one row of the field detail page: a listing and
// the latest recorded status of the field for it.
type ListingFieldStatus struct {
	ListingIDText string `json:"listing_id"`
	Status        string `json:"status"` // "filled", "empty" or "unchecked"
}

// Field status values for ListingFieldStatus.
const (
	StatusFilled    = "filled"
	StatusEmpty     = "empty"
	StatusUnchecked = "unchecked"
)
