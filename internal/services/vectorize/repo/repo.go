// Package repo provides the clickhouse sink for feature vectors
package repo

import (
	"context"

	"pedecg/internal/core/features"
	perr "pedecg/internal/platform/errors"
	"pedecg/internal/platform/store/ch"
	"pedecg/internal/services/vectorize/domain"
)

const ddl = `
CREATE TABLE IF NOT EXISTS feature_vectors (
    record_id  UUID,
    age_days   Int32,
    vector     Array(Float64),
    success    UInt8,
    quality    Float64,
    created_at DateTime DEFAULT now()
)
ENGINE = ReplacingMergeTree(created_at)
ORDER BY (record_id)`

const insertSQL = `INSERT INTO feature_vectors (record_id, age_days, vector, success, quality)`

// CH implements domain.SinkPort against clickhouse
type CH struct{ conn *ch.CH }

// NewCH constructs the sink
func NewCH(conn *ch.CH) *CH { return &CH{conn: conn} }

// EnsureTable creates the vector table when missing
func (r *CH) EnsureTable(ctx context.Context) error {
	if err := r.conn.Exec(ctx, ddl); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "ensure feature_vectors")
	}
	return nil
}

// WriteBatch implements domain.SinkPort
func (r *CH) WriteBatch(ctx context.Context, xs []domain.VectorWrite) error {
	if len(xs) == 0 {
		return nil
	}
	batch, err := r.conn.PrepareBatch(ctx, insertSQL)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "prepare vector batch")
	}
	for _, x := range xs {
		vec := make([]float64, features.Dim)
		copy(vec, x.Vector[:])
		var ok uint8
		if x.Success {
			ok = 1
		}
		if err := batch.Append(x.RecordID, int32(x.AgeDays), vec, ok, x.Quality); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "append vector for %s", x.RecordID)
		}
	}
	if err := batch.Send(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "send vector batch")
	}
	return nil
}
