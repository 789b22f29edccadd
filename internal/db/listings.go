package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fieldaudit/internal/models"
)

// listingColumns is the standard column list for listing queries.
const listingColumns = `id, batch, listing_id_text, created_at`

// scanListing scans a row into a Listing struct.
func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.Batch, &l.ListingIDText, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// scanListings scans multiple rows into a slice of Listings.
func scanListings(rows pgx.Rows) ([]models.Listing, error) {
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Batch, &l.ListingIDText, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// CreateListing inserts a new listing row.
func (d *DB) CreateListing(ctx context.Context, listing *models.Listing) error {
	if listing.Batch == "" {
		listing.Batch = "default"
	}

	query := `
		INSERT INTO listings (batch, listing_id_text)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query, listing.Batch, listing.ListingIDText).
		Scan(&listing.ID, &listing.CreatedAt)
}

// GetListingByID retrieves a listing by its ID.
func (d *DB) GetListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(d.Pool.QueryRow(ctx, query, id))
}

// FindListing retrieves the oldest listing matching the natural key
// (listing_id_text, batch). The key is not unique at the storage layer,
// so the first-created row wins.
func (d *DB) FindListing(ctx context.Context, listingIDText, batch string) (*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE listing_id_text = $1 AND batch = $2
		ORDER BY created_at ASC
		LIMIT 1
	`
	return scanListing(d.Pool.QueryRow(ctx, query, listingIDText, batch))
}

// FindOrCreateListing looks a listing up by (listing_id_text, batch) and
// creates it when absent.
func (d *DB) FindOrCreateListing(ctx context.Context, listingIDText, batch string) (*models.Listing, error) {
	listing, err := d.FindListing(ctx, listingIDText, batch)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, ErrListingNotFound) {
		return nil, err
	}

	listing = &models.Listing{Batch: batch, ListingIDText: listingIDText}
	if err := d.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// ListListingsByBatch retrieves a batch's listings ordered by creation time
// ascending, the column order of the export matrix.
func (d *DB) ListListingsByBatch(ctx context.Context, batch string) ([]models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE batch = $1
		ORDER BY created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, batch)
	if err != nil {
		return nil, err
	}
	return scanListings(rows)
}

// ListListings retrieves all listings across batches, newest first.
func (d *DB) ListListings(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanListings(rows)
}
