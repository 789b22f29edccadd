// Package handlers contains the server-rendered page handlers and the
// CSV/spreadsheet export endpoints. JSON API handlers live in
// handlers/api.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"fieldaudit/internal/config"
	"fieldaudit/internal/db"
	"fieldaudit/internal/export"
	"fieldaudit/internal/metrics"
	"fieldaudit/internal/review"
)

// PageHandler renders the entry, summary and field detail pages.
type PageHandler struct {
	db       *db.DB
	cfg      *config.Config
	recorder *review.Recorder
}

// NewPageHandler creates a new page handler.
func NewPageHandler(database *db.DB, cfg *config.Config, recorder *review.Recorder) *PageHandler {
	return &PageHandler{db: database, cfg: cfg, recorder: recorder}
}

// Index renders the quick-entry page.
func (h *PageHandler) Index(c fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Title": "Quick Entry",
	})
}

// Summary renders the batch summary page.
func (h *PageHandler) Summary(c fiber.Ctx) error {
	return c.Render("summary", fiber.Map{
		"Title":     "Summary",
		"Batch":     c.Query("batch", "default"),
		"EmptyMin":  h.cfg.RemoveEmptyMin,
		"MinSample": h.cfg.RemoveMinSample,
	})
}

// FieldDetail renders one field with the latest status per listing and the
// bulk mark-empty form.
func (h *PageHandler) FieldDetail(c fiber.Ctx) error {
	fieldID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid field id")
	}

	field, err := h.db.GetFieldByID(c.Context(), fieldID)
	if err != nil {
		if errors.Is(err, db.ErrFieldNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "field not found")
		}
		return err
	}

	rows, err := h.db.FieldStatusByListing(c.Context(), fieldID)
	if err != nil {
		return err
	}

	return c.Render("field", fiber.Map{
		"Title": "Field Detail",
		"Field": field,
		"Rows":  rows,
	})
}

// BulkMarkEmpty marks the field empty for every listing without an
// observation yet, then redirects back to the field detail page.
func (h *PageHandler) BulkMarkEmpty(c fiber.Ctx) error {
	fieldID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid field id")
	}

	analyst := c.FormValue("analyst", "bulk_user")

	created, err := h.recorder.BulkMarkEmpty(c.Context(), fieldID, analyst)
	if err != nil {
		if errors.Is(err, db.ErrFieldNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "field not found")
		}
		return err
	}

	metrics.ObservationsRecorded.WithLabelValues("bulk").Add(float64(created))

	return c.Redirect().To("/field/" + fieldID.String())
}

// candidateThresholds builds the removal thresholds from config.
func candidateThresholds(cfg *config.Config) export.Thresholds {
	return export.Thresholds{
		EmptyMin:  cfg.RemoveEmptyMin,
		SampleMin: cfg.RemoveMinSample,
	}
}
