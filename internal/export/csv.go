package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fieldaudit/internal/models"
)

// csvHeader is the column layout of the observations export.
var csvHeader = []string{"listing_id", "field", "filled", "analyst", "checked_at"}

// WriteObservationsCSV writes observation rows as CSV: filled as 0/1,
// checked_at as RFC 3339.
func WriteObservationsCSV(w io.Writer, rows []models.ObservationRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range rows {
		filled := "0"
		if r.Filled {
			filled = "1"
		}
		record := []string{
			r.ListingIDText,
			r.Canonical,
			filled,
			r.Analyst,
			r.CheckedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVObservation is one usable row of an observations import file.
type CSVObservation struct {
	ListingID string
	Field     string
	Filled    bool
}

// ReadObservationsCSV parses an observations CSV by header name, so a file
// produced by WriteObservationsCSV re-imports even though it carries extra
// columns. Required columns: listing_id, field, filled (0/1). Rows with a
// blank listing or field, or an unparseable filled value, are skipped.
func ReadObservationsCSV(r io.Reader) ([]CSVObservation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: empty file")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"listing_id", "field", "filled"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", required)
		}
	}

	cell := func(record []string, name string) string {
		idx := col[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var out []CSVObservation
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		listingID := cell(record, "listing_id")
		field := cell(record, "field")
		if listingID == "" || field == "" {
			continue
		}

		filled, err := parseFilled(cell(record, "filled"))
		if err != nil {
			continue
		}

		out = append(out, CSVObservation{
			ListingID: listingID,
			Field:     field,
			Filled:    filled,
		})
	}

	return out, nil
}

// parseFilled accepts 0/1 and the usual boolean spellings.
func parseFilled(s string) (bool, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0, nil
	}
	return strconv.ParseBool(strings.ToLower(s))
}
