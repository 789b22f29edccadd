package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"fieldaudit/internal/config"
	"fieldaudit/internal/db"
	"fieldaudit/internal/export"
	"fieldaudit/internal/metrics"
	"fieldaudit/internal/review"
)

// ExportHandler serves the CSV export/import endpoints and the Google
// Sheets symbol matrix export.
type ExportHandler struct {
	db       *db.DB
	cfg      *config.Config
	recorder *review.Recorder
	sheets   *export.SheetsExporter // nil when the feature is not configured
}

// NewExportHandler creates a new export handler. sheets may be nil; the
// sheet export endpoint then reports the feature as not configured.
func NewExportHandler(database *db.DB, cfg *config.Config, recorder *review.Recorder, sheets *export.SheetsExporter) *ExportHandler {
	return &ExportHandler{db: database, cfg: cfg, recorder: recorder, sheets: sheets}
}

// ObservationsCSV downloads every observation joined with listing text and
// field canonical name as a CSV attachment.
func (h *ExportHandler) ObservationsCSV(c fiber.Ctx) error {
	rows, err := h.db.ListObservationRows(c.Context())
	if err != nil {
		metrics.ExportsRun.WithLabelValues("csv", "error").Inc()
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch observations")
	}

	var buf bytes.Buffer
	if err := export.WriteObservationsCSV(&buf, rows); err != nil {
		metrics.ExportsRun.WithLabelValues("csv", "error").Inc()
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode observations")
	}

	metrics.ExportsRun.WithLabelValues("csv", "ok").Inc()

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="observations.csv"`)
	return c.Send(buf.Bytes())
}

// ImportPage renders the CSV upload form.
func (h *ExportHandler) ImportPage(c fiber.Ctx) error {
	return c.Render("import", fiber.Map{
		"Title": "Import Observations",
	})
}

// Import applies an uploaded observations CSV to the given batch.
func (h *ExportHandler) Import(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("no file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("could not read file")
	}
	defer file.Close()

	batch := c.FormValue("batch", "default")
	analyst := c.FormValue("analyst", "import_user")

	imported, err := h.recorder.ImportObservations(c.Context(), file, batch, analyst)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("import failed: %v", err))
	}

	metrics.ObservationsRecorded.WithLabelValues("import").Add(float64(imported))

	return c.SendString(fmt.Sprintf("imported %d observations into batch %q", imported, batch))
}

// GoogleSheetSymbols writes the batch's symbol matrix to the "Single
// Family" tab of the given spreadsheet.
func (h *ExportHandler) GoogleSheetSymbols(c fiber.Ctx) error {
	sheetID := c.Query("sheet_id")
	if sheetID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing sheet_id")
	}
	batch := c.Query("batch", "default")

	if h.sheets == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString(export.ErrNotConfigured.Error())
	}

	listings, err := h.db.ListListingsByBatch(c.Context(), batch)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch listings")
	}
	fields, err := h.db.ListFields(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch fields")
	}
	observations, err := h.db.ListObservations(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch observations")
	}

	matrix, err := export.BuildMatrix(fields, listings, observations, candidateThresholds(h.cfg))
	if err != nil {
		if errors.Is(err, export.ErrNoListings) {
			return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("no listings found for batch %q", batch))
		}
		if errors.Is(err, export.ErrNoFields) {
			return c.Status(fiber.StatusBadRequest).SendString("no fields found")
		}
		return err
	}

	if err := h.sheets.Export(c.Context(), sheetID, matrix); err != nil {
		metrics.ExportsRun.WithLabelValues("sheet", "error").Inc()
		return c.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	metrics.ExportsRun.WithLabelValues("sheet", "ok").Inc()

	return c.SendString(fmt.Sprintf(
		"Exported %d fields for %d listings to sheet %s (tab %q)",
		len(matrix.Rows), matrix.Listings, sheetID, export.TabName,
	))
}
