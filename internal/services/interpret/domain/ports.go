package domain

import "context"

// InterpretPort runs the full interpretation pipeline
type InterpretPort interface {
	Interpret(ctx context.Context, in InterpretInput) (InterpretResult, error)
	NormalsForAge(ctx context.Context, ageDays int) (NormalsResult, error)
}

// RecorderPort persists interpreted records for later batch work.
// nil means persistence is disabled
type RecorderPort interface {
	SaveRecord(ctx context.Context, rec RecordWrite) error
}

// RecordWrite is what the interpret service hands to storage
type RecordWrite struct {
	RecordID     string
	AgeDays      int
	SamplingRate int
	LeadNames    []string
	Signal       [][]float64
}
