package review

import (
	"context"
	"fmt"
	"io"

	"fieldaudit/internal/export"
	"fieldaudit/internal/models"
)

// ImportObservations reads an observations CSV and applies each usable row:
// find-or-create the listing by (listing id, batch), find-or-create the
// field by name, append the observation. Returns the number of
// observations created.
func (r *Recorder) ImportObservations(ctx context.Context, reader io.Reader, batch, analyst string) (int, error) {
	if batch == "" {
		batch = "default"
	}
	if analyst == "" {
		analyst = "unknown"
	}

	rows, err := export.ReadObservationsCSV(reader)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, row := range rows {
		listing, err := r.db.FindOrCreateListing(ctx, row.ListingID, batch)
		if err != nil {
			return imported, fmt.Errorf("import listing %q: %w", row.ListingID, err)
		}

		field, err := r.db.ResolveField(ctx, row.Field)
		if err != nil {
			return imported, fmt.Errorf("import field %q: %w", row.Field, err)
		}

		if err := r.db.CreateObservation(ctx, &models.Observation{
			ListingID: listing.ID,
			FieldID:   field.ID,
			Filled:    row.Filled,
			RawText:   row.Field,
			Analyst:   analyst,
		}); err != nil {
			return imported, fmt.Errorf("import observation for %q/%q: %w", row.ListingID, row.Field, err)
		}
		imported++
	}

	return imported, nil
}
