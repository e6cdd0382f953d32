package domain

import "context"

// WriterPort persists records and predictions
type WriterPort interface {
	Insert(ctx context.Context, rec RecordWrite) error
	InsertPrediction(ctx context.Context, pw PredictionWrite) error
	MarkProcessed(ctx context.Context, ids []string) error
}

// ReaderPort pages records that have not been vectorized yet
type ReaderPort interface {
	ListPending(ctx context.Context, after AfterKey, limit int) ([]Record, AfterKey, error)
}
