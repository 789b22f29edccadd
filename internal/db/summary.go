package db

import (
	"context"

	"fieldaudit/internal/models"
)

// SummarizeBatch aggregates per-field filled/empty/sample counts over the
// observations whose listing belongs to the batch. Fields with no
// observations in the batch are omitted. Ordered by sample count
// descending, ties broken by canonical name.
func (d *DB) SummarizeBatch(ctx context.Context, batch string) ([]models.FieldSummary, error) {
	query := `
		SELECT f.id, f.canonical,
			COUNT(*) FILTER (WHERE o.filled) AS filled_count,
			COUNT(*) FILTER (WHERE NOT o.filled) AS empty_count,
			COUNT(o.id) AS sample_count
		FROM fields f
		JOIN observations o ON f.id = o.field_id
		JOIN listings l ON o.listing_id = l.id
		WHERE l.batch = $1
		GROUP BY f.id, f.canonical
		ORDER BY sample_count DESC, f.canonical ASC
	`
	rows, err := d.Pool.Query(ctx, query, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.FieldSummary
	for rows.Next() {
		var s models.FieldSummary
		if err := rows.Scan(&s.FieldID, &s.Canonical, &s.FilledCount, &s.EmptyCount, &s.SampleCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Stats counts the stored entities, exposed as gauges on /metrics.
func (d *DB) Stats(ctx context.Context) (*models.StoreStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM listings),
			(SELECT COUNT(*) FROM fields),
			(SELECT COUNT(*) FROM observations)
	`
	var stats models.StoreStats
	if err := d.Pool.QueryRow(ctx, query).Scan(&stats.Listings, &stats.Fields, &stats.Observations); err != nil {
		return nil, err
	}
	return &stats, nil
}
