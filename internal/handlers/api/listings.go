package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"fieldaudit/internal/db"
	"fieldaudit/internal/metrics"
	"fieldaudit/internal/review"
)

// ListingHandler records listing observations via JSON API.
type ListingHandler struct {
	recorder *review.Recorder
}

// NewListingHandler creates a new API listing handler.
func NewListingHandler(recorder *review.Recorder) *ListingHandler {
	return &ListingHandler{recorder: recorder}
}

// Create records a listing submission with its field observations.
func (h *ListingHandler) Create(c fiber.Ctx) error {
	batch := c.Params("batch")

	var body struct {
		ListingID    string                    `json:"listing_id"`
		Observations []review.ObservationInput `json:"observations"`
		Analyst      string                    `json:"analyst"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	listing, err := h.recorder.RecordListing(c.Context(), batch, body.ListingID, body.Observations, body.Analyst)
	if err != nil {
		if errors.Is(err, db.ErrBlankListingID) {
			return jsonError(c, fiber.StatusBadRequest, "listing_id required")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to record listing")
	}

	metrics.ObservationsRecorded.WithLabelValues("api").Add(float64(len(body.Observations)))

	return jsonSuccess(c, fiber.Map{
		"listing_db_id": listing.ID,
	})
}
