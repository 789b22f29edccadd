// Package export shapes observation data for the CSV and Google Sheets
// exports: the flat observations CSV and the listings-by-fields symbol
// matrix with its per-row summary formulas.
package export

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fieldaudit/internal/models"
)

// Cell symbols of the matrix grid.
const (
	SymbolUnobserved = "—"
	SymbolFilled     = "✔️"
	SymbolEmpty      = "✖️"
)

var (
	ErrNoFields   = errors.New("no fields to export")
	ErrNoListings = errors.New("no listings to export")
)

// Thresholds are the removal recommendation cutoffs: a field is a removal
// candidate when its empty count and sample size both reach the minimums.
type Thresholds struct {
	EmptyMin  int
	SampleMin int
}

// Matrix is a fields-by-listings grid of observation symbols plus the
// header row, ready to be written to a spreadsheet tab.
//
// Columns are the batch's listings in creation order; rows are ALL fields
// in canonical order. The per-cell lookup is not batch-filtered — only the
// column set is — matching the scope rules of the export.
type Matrix struct {
	Header     []string   // "Field Name", one column per listing, four summary columns
	Rows       [][]string // canonical name followed by one symbol per listing
	Listings   int
	Thresholds Thresholds
}

type pairKey struct {
	fieldID   uuid.UUID
	listingID uuid.UUID
}

// BuildMatrix lays out the symbol grid. Observations must be ordered by
// check time ascending; when a pair was re-checked the latest
// determination wins.
func BuildMatrix(fields []models.Field, listings []models.Listing, observations []models.Observation, th Thresholds) (*Matrix, error) {
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	latest := make(map[pairKey]bool, len(observations))
	for _, o := range observations {
		latest[pairKey{o.FieldID, o.ListingID}] = o.Filled
	}

	header := make([]string, 0, len(listings)+5)
	header = append(header, "Field Name")
	for i, l := range listings {
		header = append(header, fmt.Sprintf("L%d - %s", i+1, l.ListingIDText))
	}
	header = append(header, "Filled Count", "Empty Count", "% Empty", fmt.Sprintf("Remove? (≥%d)", th.EmptyMin))

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		row := make([]string, 0, len(listings)+1)
		row = append(row, f.Canonical)
		for _, l := range listings {
			filled, ok := latest[pairKey{f.ID, l.ID}]
			switch {
			case !ok:
				row = append(row, SymbolUnobserved)
			case filled:
				row = append(row, SymbolFilled)
			default:
				row = append(row, SymbolEmpty)
			}
		}
		rows = append(rows, row)
	}

	return &Matrix{
		Header:     header,
		Rows:       rows,
		Listings:   len(listings),
		Thresholds: th,
	}, nil
}

// RowFormulas returns the four summary formulas for the given zero-based
// matrix row: filled count, empty count, empty ratio (guarded against
// divide-by-zero) and the YES/NO removal recommendation. Cell references
// account for the header occupying sheet row 1.
func (m *Matrix) RowFormulas(rowIdx int) [4]string {
	sheetRow := rowIdx + 2

	firstListingCol := columnLetter(2)
	lastListingCol := columnLetter(1 + m.Listings)
	filledCol := columnLetter(m.Listings + 2)
	emptyCol := columnLetter(m.Listings + 3)

	listRange := fmt.Sprintf("%s%d:%s%d", firstListingCol, sheetRow, lastListingCol, sheetRow)
	filledCell := fmt.Sprintf("%s%d", filledCol, sheetRow)
	emptyCell := fmt.Sprintf("%s%d", emptyCol, sheetRow)

	return [4]string{
		fmt.Sprintf(`=COUNTIF(%s,"%s")`, listRange, SymbolFilled),
		fmt.Sprintf(`=COUNTIF(%s,"%s")`, listRange, SymbolEmpty),
		fmt.Sprintf(`=IF((%s+%s)=0,0,%s/(%s+%s))`, filledCell, emptyCell, emptyCell, filledCell, emptyCell),
		fmt.Sprintf(`=IF(AND(%s>=%d,(%s+%s)>=%d),"YES","NO")`,
			emptyCell, m.Thresholds.EmptyMin, filledCell, emptyCell, m.Thresholds.SampleMin),
	}
}

// FormulaRange returns the A1 range the four summary formulas of the given
// zero-based row occupy.
func (m *Matrix) FormulaRange(rowIdx int) string {
	sheetRow := rowIdx + 2
	return fmt.Sprintf("%s%d:%s%d",
		columnLetter(m.Listings+2), sheetRow,
		columnLetter(m.Listings+5), sheetRow)
}

// RemoveCandidate reports whether the recorded counts recommend dropping
// the field from future review.
func RemoveCandidate(filledCount, emptyCount int, th Thresholds) bool {
	return emptyCount >= th.EmptyMin && filledCount+emptyCount >= th.SampleMin
}

// EmptyRatio returns empty/(filled+empty), or 0 for an empty sample.
func EmptyRatio(filledCount, emptyCount int) float64 {
	sample := filledCount + emptyCount
	if sample == 0 {
		return 0
	}
	return float64(emptyCount) / float64(sample)
}

// columnLetter converts a 1-based column index to its A1 letters
// (1 → A, 26 → Z, 27 → AA).
func columnLetter(idx int) string {
	var letters []byte
	for idx > 0 {
		idx--
		letters = append([]byte{byte('A' + idx%26)}, letters...)
		idx /= 26
	}
	return string(letters)
}
