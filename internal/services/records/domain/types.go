// Package domain holds the stored record types
package domain

import (
	"time"

	"pedecg/internal/core/rules"
)

// Record is a persisted ECG awaiting or past batch vectorization
type Record struct {
	ID           string      `json:"id"`
	AgeDays      int         `json:"age_days"`
	SamplingRate int         `json:"sampling_rate"`
	LeadNames    []string    `json:"lead_names"`
	Signal       [][]float64 `json:"signal"`
	CreatedAt    time.Time   `json:"created_at"`
	ProcessedAt  *time.Time  `json:"processed_at,omitempty"`
}

// RecordWrite is the insert payload
type RecordWrite struct {
	ID           string
	AgeDays      int
	SamplingRate int
	LeadNames    []string
	Signal       [][]float64
}

// PredictionWrite stores a rule engine result for a record
type PredictionWrite struct {
	RecordID   string
	Prediction rules.Prediction
}

// AfterKey is the keyset cursor for pending record pages
type AfterKey struct {
	CreatedAt time.Time
	ID        string
}
