package models

import "github.com/google/uuid"

// FieldSummary aggregates the observations recorded for one field within
// a batch.
type FieldSummary struct {
	FieldID     uuid.UUID `json:"field_id"`
	Canonical   string    `json:"canonical"`
	FilledCount int       `json:"filled"`
	EmptyCount  int       `json:"empty"`
	SampleCount int       `json:"sample"`
}

// StoreStats holds entity counts, exposed as gauges on /metrics.
type StoreStats struct {
	Listings     int64
	Fields       int64
	Observations int64
}
