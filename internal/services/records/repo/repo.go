// Package repo provides the Postgres repository for ECG records and
// rule predictions
package repo

import (
	"context"
	_ "embed"
	"encoding/json"
	"strconv"

	perr "pedecg/internal/platform/errors"
	"pedecg/internal/services/records/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schemaSQL string

// Queryer is the slice of pgxpool.Pool the repo needs
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG implements domain.WriterPort and domain.ReaderPort
type PG struct{ q Queryer }

// NewPG constructs the repo over a pool or transaction
func NewPG(q Queryer) *PG { return &PG{q: q} }

// EnsureSchema creates the tables when they do not exist yet
func (r *PG) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, schemaSQL); err != nil {
		return perr.FromPostgres(err, "ensure schema")
	}
	return nil
}

// Insert implements domain.WriterPort
func (r *PG) Insert(ctx context.Context, rec domain.RecordWrite) error {
	signal, err := json.Marshal(rec.Signal)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode signal")
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO ecg_records (id, age_days, sampling_rate, lead_names, signal)
		VALUES ($1::uuid, $2, $3, $4, $5::jsonb)`,
		rec.ID, rec.AgeDays, rec.SamplingRate, rec.LeadNames, signal,
	)
	if err != nil {
		return perr.FromPostgresf(err, "insert record %s", rec.ID)
	}
	return nil
}

// InsertPrediction implements domain.WriterPort
func (r *PG) InsertPrediction(ctx context.Context, pw domain.PredictionWrite) error {
	body, err := json.Marshal(pw.Prediction)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode prediction")
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO rule_predictions (record_id, abnormal_score, prediction)
		VALUES ($1::uuid, $2, $3::jsonb)
		ON CONFLICT (record_id) DO UPDATE
			SET abnormal_score = EXCLUDED.abnormal_score,
			    prediction = EXCLUDED.prediction,
			    created_at = now()`,
		pw.RecordID, pw.Prediction.AbnormalScore, body,
	)
	if err != nil {
		return perr.FromPostgresf(err, "insert prediction for %s", pw.RecordID)
	}
	return nil
}

// MarkProcessed implements domain.WriterPort
func (r *PG) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		UPDATE ecg_records
		SET processed_at = now()
		WHERE id = ANY($1::uuid[])`,
		ids,
	)
	if err != nil {
		return perr.FromPostgres(err, "mark processed")
	}
	return nil
}

// ListPending implements domain.ReaderPort with a keyset cursor
func (r *PG) ListPending(ctx context.Context, after domain.AfterKey, limit int) ([]domain.Record, domain.AfterKey, error) {
	sql := `
		SELECT id::text, age_days, sampling_rate, lead_names, signal, created_at
		FROM ecg_records
		WHERE processed_at IS NULL`
	args := []any{}
	if after.ID != "" {
		sql += ` AND (created_at, id) > ($1, $2::uuid)`
		args = append(args, after.CreatedAt, after.ID)
	}
	sql += ` ORDER BY created_at, id LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.AfterKey{}, perr.FromPostgres(err, "list pending")
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	var last domain.AfterKey
	for rows.Next() {
		var rec domain.Record
		var signal []byte
		if err := rows.Scan(&rec.ID, &rec.AgeDays, &rec.SamplingRate, &rec.LeadNames, &signal, &rec.CreatedAt); err != nil {
			return nil, domain.AfterKey{}, perr.FromPostgres(err, "scan record")
		}
		if err := json.Unmarshal(signal, &rec.Signal); err != nil {
			return nil, domain.AfterKey{}, perr.Wrapf(err, perr.ErrorCodeDB, "decode signal for %s", rec.ID)
		}
		last = domain.AfterKey{CreatedAt: rec.CreatedAt, ID: rec.ID}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.AfterKey{}, perr.FromPostgres(err, "list pending")
	}
	return out, last, nil
}
