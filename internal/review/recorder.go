// Package review implements the observation recording workflows: the
// quick-entry submission path, the bulk mark-empty action and the CSV
// import path. All persistence goes through the db layer.
package review

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"fieldaudit/internal/db"
	"fieldaudit/internal/models"
)

// ObservationInput is one field determination as submitted by a client.
type ObservationInput struct {
	FieldText string `json:"field_text"`
	Filled    bool   `json:"filled"`
}

// Recorder appends observations for listings against canonical fields.
type Recorder struct {
	db *db.DB
}

// NewRecorder creates a new recorder.
func NewRecorder(database *db.DB) *Recorder {
	return &Recorder{db: database}
}

// RecordListing resolves the listing by (listing id text, batch), creating
// it when absent, and appends one observation per non-blank field entry.
// Blank field texts are skipped silently; a blank listing id is rejected
// with db.ErrBlankListingID. Returns the listing observations were
// recorded against.
func (r *Recorder) RecordListing(ctx context.Context, batch, listingIDText string, observations []ObservationInput, analyst string) (*models.Listing, error) {
	listingIDText = strings.TrimSpace(listingIDText)
	if listingIDText == "" {
		return nil, db.ErrBlankListingID
	}
	if batch == "" {
		batch = "default"
	}
	if analyst == "" {
		analyst = "unknown"
	}

	listing, err := r.db.FindOrCreateListing(ctx, listingIDText, batch)
	if err != nil {
		return nil, err
	}

	for _, obs := range observations {
		raw := strings.TrimSpace(obs.FieldText)
		if raw == "" {
			continue
		}

		field, err := r.db.ResolveField(ctx, raw)
		if err != nil {
			return nil, err
		}

		if err := r.db.CreateObservation(ctx, &models.Observation{
			ListingID: listing.ID,
			FieldID:   field.ID,
			Filled:    obs.Filled,
			RawText:   raw,
			Analyst:   analyst,
		}); err != nil {
			return nil, err
		}
	}

	return listing, nil
}

// BulkMarkEmpty records a filled=false observation for every listing with
// no observation history for the field, and returns the number created.
func (r *Recorder) BulkMarkEmpty(ctx context.Context, fieldID uuid.UUID, analyst string) (int64, error) {
	if analyst == "" {
		analyst = "unknown"
	}
	return r.db.BulkMarkEmpty(ctx, fieldID, analyst)
}
