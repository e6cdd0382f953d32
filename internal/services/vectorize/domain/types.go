// Package domain holds the batch vectorizer types
package domain

import (
	"context"
	"time"
)

// VectorWrite is one feature vector row bound for the analytics store
type VectorWrite struct {
	RecordID  string
	AgeDays   int
	Vector    [30]float64
	Success   bool
	Quality   float64
	CreatedAt time.Time
}

// SinkPort writes feature vectors in batches
type SinkPort interface {
	WriteBatch(ctx context.Context, xs []VectorWrite) error
}

// RunnerPort drives a full vectorization run
type RunnerPort interface {
	Run(ctx context.Context) (RunStats, error)
}

// RunStats summarizes one run
type RunStats struct {
	Processed int
	Failed    int
	Pages     int
}
