// Package domain holds the interpret service types
package domain

import (
	"pedecg/internal/core/features"
	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
	"pedecg/internal/core/rules"
)

// InterpretInput is the request body for an interpretation
type InterpretInput struct {
	// Signal is leads x samples, or samples x leads (auto-detected)
	Signal       [][]float64 `json:"signal" validate:"required,min=1"`
	SamplingRate int         `json:"sampling_rate" validate:"required,min=50,max=2000"`
	LeadNames    []string    `json:"lead_names,omitempty"`
	AgeDays      int         `json:"age_days" validate:"min=0,max=10000"`
	// Persist stores the record for later batch vectorization
	Persist bool `json:"persist,omitempty"`
}

// InterpretResult bundles everything an interpretation produces
type InterpretResult struct {
	RecordID     string                `json:"record_id"`
	AgeDays      int                   `json:"age_days"`
	AgeBucket    normals.AgeBucket     `json:"age_bucket"`
	Measurements measure.Measurements  `json:"measurements"`
	Prediction   rules.Prediction      `json:"prediction"`
	Features     features.RuleFeatures `json:"features"`
	Cached       bool                  `json:"cached,omitempty"`
}

// NormalsResult is the response for a normals lookup
type NormalsResult struct {
	AgeDays   int                `json:"age_days"`
	AgeBucket normals.AgeBucket  `json:"age_bucket"`
	Normals   normals.AgeNormals `json:"normals"`
}
