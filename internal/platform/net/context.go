// Package net provides request-context utilities shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyRecordID ctxKey = "record_id"

// WithRequest annotates ctx with request-scoped ids. The request id is
// stored under chi's key so chimw.GetReqID keeps working
func WithRequest(ctx context.Context, reqID, recordID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if recordID != "" {
		ctx = context.WithValue(ctx, keyRecordID, recordID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// RecordID returns the ECG record id on the context if present
func RecordID(ctx context.Context) string {
	if v, ok := ctx.Value(keyRecordID).(string); ok {
		return v
	}
	return ""
}
