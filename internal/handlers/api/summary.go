package api

import (
	"github.com/gofiber/fiber/v3"

	"fieldaudit/internal/config"
	"fieldaudit/internal/db"
	"fieldaudit/internal/export"
)

// SummaryHandler serves per-batch field summaries via JSON API.
type SummaryHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewSummaryHandler creates a new API summary handler.
func NewSummaryHandler(database *db.DB, cfg *config.Config) *SummaryHandler {
	return &SummaryHandler{db: database, cfg: cfg}
}

// summaryRow is a FieldSummary with the server-evaluated removal
// recommendation attached.
type summaryRow struct {
	FieldID    string  `json:"field_id"`
	Canonical  string  `json:"canonical"`
	Filled     int     `json:"filled"`
	Empty      int     `json:"empty"`
	Sample     int     `json:"sample"`
	EmptyRatio float64 `json:"empty_ratio"`
	RemoveCand bool    `json:"remove_candidate"`
}

// Batch returns the per-field fill/empty summary for a batch, ordered by
// sample count descending.
func (h *SummaryHandler) Batch(c fiber.Ctx) error {
	batch := c.Params("batch")

	summaries, err := h.db.SummarizeBatch(c.Context(), batch)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to summarize batch")
	}

	th := export.Thresholds{
		EmptyMin:  h.cfg.RemoveEmptyMin,
		SampleMin: h.cfg.RemoveMinSample,
	}

	rows := make([]summaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, summaryRow{
			FieldID:    s.FieldID.String(),
			Canonical:  s.Canonical,
			Filled:     s.FilledCount,
			Empty:      s.EmptyCount,
			Sample:     s.SampleCount,
			EmptyRatio: export.EmptyRatio(s.FilledCount, s.EmptyCount),
			RemoveCand: export.RemoveCandidate(s.FilledCount, s.EmptyCount, th),
		})
	}

	return jsonSuccess(c, rows)
}
