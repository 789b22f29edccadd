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

// fieldColumns is the standard column list for field queries.
const fieldColumns = `id, canonical, created_at`

// scanField scans a row into a Field struct.
func scanField(row pgx.Row) (*models.Field, error) {
	var f models.Field
	err := row.Scan(&f.ID, &f.Canonical, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// scanFields scans multiple rows into a slice of Fields.
func scanFields(rows pgx.Rows) ([]models.Field, error) {
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		var f models.Field
		if err := rows.Scan(&f.ID, &f.Canonical, &f.CreatedAt); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, rows.Err()
}

// CreateField inserts a new field with the given canonical name.
func (d *DB) CreateField(ctx context.Context, field *models.Field) error {
	query := `
		INSERT INTO fields (canonical)
		VALUES ($1)
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query, field.Canonical).Scan(&field.ID, &field.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCanonical
		}
		return err
	}
	return nil
}

// GetFieldByID retrieves a field by its ID.
func (d *DB) GetFieldByID(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	query := `SELECT ` + fieldColumns + ` FROM fields WHERE id = $1`
	return scanField(d.Pool.QueryRow(ctx, query, id))
}

// GetFieldByCanonical retrieves a field by exact, case-sensitive canonical name.
func (d *DB) GetFieldByCanonical(ctx context.Context, canonical string) (*models.Field, error) {
	query := `SELECT ` + fieldColumns + ` FROM fields WHERE canonical = $1`
	return scanField(d.Pool.QueryRow(ctx, query, canonical))
}

// ResolveField maps a free-text field name to its canonical Field record,
// creating the record on first use. The name is trimmed; a blank name is
// rejected with ErrBlankField. The unique index on canonical makes two
// concurrent resolvers of the same new name converge on one row: the loser
// of the insert race falls back to the winner's row.
func (d *DB) ResolveField(ctx context.Context, name string) (*models.Field, error) {
	canonical := strings.TrimSpace(name)
	if canonical == "" {
		return nil, ErrBlankField
	}

	field, err := d.GetFieldByCanonical(ctx, canonical)
	if err == nil {
		return field, nil
	}
	if !errors.Is(err, ErrFieldNotFound) {
		return nil, err
	}

	field = &models.Field{Canonical: canonical}
	switch err := d.CreateField(ctx, field); {
	case err == nil:
		return field, nil
	case errors.Is(err, ErrDuplicateCanonical):
		// Lost the creation race; the row exists now.
		return d.GetFieldByCanonical(ctx, canonical)
	default:
		return nil, err
	}
}

// SearchFields retrieves fields whose canonical name contains the query,
// case-insensitive, ordered by canonical name.
func (d *DB) SearchFields(ctx context.Context, query string, limit int) ([]models.Field, error) {
	sql := `
		SELECT ` + fieldColumns + `
		FROM fields
		WHERE canonical ILIKE $1
		ORDER BY canonical ASC
		LIMIT $2
	`
	rows, err := d.Pool.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanFields(rows)
}

// ListRecentFields retrieves the most recently created fields.
func (d *DB) ListRecentFields(ctx context.Context, limit int) ([]models.Field, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM fields
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanFields(rows)
}

// ListFields retrieves all fields ordered by canonical name ascending,
// the row order of the export matrix.
func (d *DB) ListFields(ctx context.Context) ([]models.Field, error) {
	query := `SELECT ` + fieldColumns + ` FROM fields ORDER BY canonical ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanFields(rows)
}
