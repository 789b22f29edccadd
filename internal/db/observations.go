package db

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fieldaudit/internal/models"
)

// observationColumns is the standard column list for observation queries.
const observationColumns = `id, listing_id, field_id, filled, raw_text, analyst, checked_at`

// scanObservation scans a row into an Observation struct.
func scanObservation(row pgx.Row) (*models.Observation, error) {
	var o models.Observation
	err := row.Scan(&o.ID, &o.ListingID, &o.FieldID, &o.Filled, &o.RawText, &o.Analyst, &o.CheckedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrObservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateObservation appends an observation row. Foreign key violations are
// mapped to the missing parent's sentinel so callers can report which
// reference was dangling.
func (d *DB) CreateObservation(ctx context.Context, obs *models.Observation) error {
	if obs.Analyst == "" {
		obs.Analyst = "unknown"
	}

	query := `
		INSERT INTO observations (listing_id, field_id, filled, raw_text, analyst)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, checked_at
	`
	err := d.Pool.QueryRow(ctx, query,
		obs.ListingID,
		obs.FieldID,
		obs.Filled,
		obs.RawText,
		obs.Analyst,
	).Scan(&obs.ID, &obs.CheckedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if strings.Contains(pgErr.ConstraintName, "field") {
				return ErrFieldNotFound
			}
			return ErrListingNotFound
		}
		return err
	}
	return nil
}

// LatestObservation retrieves the most recent observation for a
// (listing, field) pair. Pairs may have a history of re-checks; the
// latest determination wins everywhere an observation is displayed.
func (d *DB) LatestObservation(ctx context.Context, listingID, fieldID uuid.UUID) (*models.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE listing_id = $1 AND field_id = $2
		ORDER BY checked_at DESC
		LIMIT 1
	`
	return scanObservation(d.Pool.QueryRow(ctx, query, listingID, fieldID))
}

// ListObservations retrieves all observations ordered by check time
// ascending, so map-building callers that overwrite per pair end up with
// the latest row.
func (d *DB) ListObservations(ctx context.Context) ([]models.Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations ORDER BY checked_at ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.ListingID, &o.FieldID, &o.Filled, &o.RawText, &o.Analyst, &o.CheckedAt); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}

	return observations, rows.Err()
}

// ListObservationRows retrieves all observations joined with listing text
// and field canonical name, the flat shape of the CSV export.
func (d *DB) ListObservationRows(ctx context.Context) ([]models.ObservationRow, error) {
	query := `
		SELECT l.listing_id_text, f.canonical, o.filled, o.analyst, o.checked_at
		FROM observations o
		JOIN listings l ON o.listing_id = l.id
		JOIN fields f ON o.field_id = f.id
		ORDER BY o.checked_at ASC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ObservationRow
	for rows.Next() {
		var r models.ObservationRow
		if err := rows.Scan(&r.ListingIDText, &r.Canonical, &r.Filled, &r.Analyst, &r.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// BulkMarkEmpty creates a filled=false observation for every listing that
// has no observation history for the field yet, and returns the number of
// rows created. Running it twice creates nothing the second time: it only
// fills gaps.
func (d *DB) BulkMarkEmpty(ctx context.Context, fieldID uuid.UUID, analyst string) (int64, error) {
	field, err := d.GetFieldByID(ctx, fieldID)
	if err != nil {
		return 0, err
	}

	if analyst == "" {
		analyst = "unknown"
	}

	query := `
		INSERT INTO observations (listing_id, field_id, filled, raw_text, analyst)
		SELECT l.id, $1, FALSE, $2, $3
		FROM listings l
		WHERE NOT EXISTS (
			SELECT 1 FROM observations o
			WHERE o.listing_id = l.id AND o.field_id = $1
		)
	`
	tag, err := d.Pool.Exec(ctx, query, field.ID, field.Canonical, analyst)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FieldStatusByListing retrieves every listing (newest first) with the
// latest recorded status of the given field, for the field detail page.
func (d *DB) FieldStatusByListing(ctx context.Context, fieldID uuid.UUID) ([]models.ListingFieldStatus, error) {
	query := `
		SELECT l.listing_id_text,
			CASE
				WHEN o.filled IS NULL THEN 'unchecked'
				WHEN o.filled THEN 'filled'
				ELSE 'empty'
			END AS status
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT filled
			FROM observations
			WHERE listing_id = l.id AND field_id = $1
			ORDER BY checked_at DESC
			LIMIT 1
		) o ON TRUE
		ORDER BY l.created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ListingFieldStatus
	for rows.Next() {
		var s models.ListingFieldStatus
		if err := rows.Scan(&s.ListingIDText, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}
