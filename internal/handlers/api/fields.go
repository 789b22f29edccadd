package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"fieldaudit/internal/db"
)

const (
	searchLimit = 20
	recentLimit = 50
)

// FieldHandler serves field registry lookups via JSON API.
type FieldHandler struct {
	db *db.DB
}

// NewFieldHandler creates a new API field handler.
func NewFieldHandler(database *db.DB) *FieldHandler {
	return &FieldHandler{db: database}
}

// Search returns fields matching the query, or the most recently created
// fields when no query is given. Backs the quick-entry autocomplete.
func (h *FieldHandler) Search(c fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q", ""))

	if query != "" {
		fields, err := h.db.SearchFields(c.Context(), query, searchLimit)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to search fields")
		}
		return jsonSuccess(c, fields)
	}

	fields, err := h.db.ListRecentFields(c.Context(), recentLimit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch fields")
	}
	return jsonSuccess(c, fields)
}
