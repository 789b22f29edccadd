package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// TabName is the spreadsheet tab the matrix is written to. The tab is
// deleted and recreated on every export: a full overwrite, never additive.
const TabName = "Single Family"

// ErrNotConfigured is returned when the sheet export is invoked without
// service-account credentials. The capability is resolved once at startup;
// its absence disables this one feature and nothing else.
var ErrNotConfigured = errors.New("google sheets export is not configured")

var sheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

// SheetsExporter writes a Matrix to a Google spreadsheet.
type SheetsExporter struct {
	svc *sheets.Service
}

// NewSheetsExporter builds a Sheets client from a base64-encoded
// service-account JSON credential.
func NewSheetsExporter(ctx context.Context, credentialsB64 string) (*SheetsExporter, error) {
	if credentialsB64 == "" {
		return nil, ErrNotConfigured
	}

	raw, err := base64.StdEncoding.DecodeString(credentialsB64)
	if err != nil {
		return nil, fmt.Errorf("sheets: decode credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(raw, sheetsScopes...)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: create client: %w", err)
	}

	return &SheetsExporter{svc: svc}, nil
}

// Export writes the matrix to the spreadsheet: recreate the tab, write the
// header row, write the symbol rows, then the four summary formulas per
// row. Each phase failure is wrapped with the phase that failed. Single
// attempt, no retries.
func (e *SheetsExporter) Export(ctx context.Context, spreadsheetID string, m *Matrix) error {
	spreadsheet, err := e.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: open spreadsheet %s: %w", spreadsheetID, err)
	}

	if err := e.recreateTab(ctx, spreadsheet, m); err != nil {
		return fmt.Errorf("sheets: create tab %q: %w", TabName, err)
	}

	if err := e.writeRange(ctx, spreadsheetID, "A1", [][]string{m.Header}); err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}

	if err := e.writeRange(ctx, spreadsheetID, "A2", m.Rows); err != nil {
		return fmt.Errorf("sheets: write rows: %w", err)
	}

	for i := range m.Rows {
		formulas := m.RowFormulas(i)
		if err := e.writeRange(ctx, spreadsheetID, m.FormulaRange(i), [][]string{formulas[:]}); err != nil {
			return fmt.Errorf("sheets: write formulas at row %d: %w", i+2, err)
		}
	}

	return nil
}

// recreateTab deletes any existing tab with the fixed name and adds a
// fresh one sized to the matrix.
func (e *SheetsExporter) recreateTab(ctx context.Context, spreadsheet *sheets.Spreadsheet, m *Matrix) error {
	var requests []*sheets.Request
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == TabName {
			requests = append(requests, &sheets.Request{
				DeleteSheet: &sheets.DeleteSheetRequest{SheetId: sheet.Properties.SheetId},
			})
		}
	}

	rowCount := int64(len(m.Rows) + 10)
	if rowCount < 100 {
		rowCount = 100
	}
	requests = append(requests, &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: TabName,
				GridProperties: &sheets.GridProperties{
					RowCount:    rowCount,
					ColumnCount: int64(len(m.Header)),
				},
			},
		},
	})

	_, err := e.svc.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

// writeRange writes string cells starting at the given A1 range on the
// export tab. USER_ENTERED so formula strings are evaluated by the sheet.
func (e *SheetsExporter) writeRange(ctx context.Context, spreadsheetID, a1 string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	_, err := e.svc.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("'%s'!%s", TabName, a1), &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
