package models

import (
	"time"

	"github.com/google/uuid"
)

// Field is the canonical name for an attribute being checked,
// e.g. "Garage Type". Created lazily the first time a name is observed;
// the canonical text never changes afterwards.
type Field struct {
	ID        uuid.UUID `json:"id"`
	Canonical string    `json:"canonical"`
	CreatedAt time.Time `json:"created_at"`
}
