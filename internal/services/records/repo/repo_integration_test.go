//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pedecg/internal/core/rules"
	"pedecg/internal/platform/store/pg"
	"pedecg/internal/services/records/domain"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func newTestRepo(t *testing.T, ctx context.Context, dsn string) *PG {
	t.Helper()
	p, err := pg.Open(ctx, pg.Config{URL: dsn, MaxConns: 2}, nil, nil)
	if err != nil {
		t.Fatalf("pg open: %v", err)
	}
	t.Cleanup(p.Close)

	r := NewPG(p.Pool)
	if err := r.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return r
}

func TestRepo_Integration_RoundTrip(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r := newTestRepo(t, ctx, dsn)

	id := uuid.NewString()
	rec := domain.RecordWrite{
		ID:           id,
		AgeDays:      365,
		SamplingRate: 500,
		LeadNames:    []string{"I", "II"},
		Signal:       [][]float64{{0.1, 0.2}, {0.3, 0.4}},
	}
	if err := r.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, next, err := r.ListPending(ctx, domain.AfterKey{}, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("pending rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.ID != id || got.AgeDays != 365 || got.SamplingRate != 500 {
		t.Fatalf("record: %+v", got)
	}
	if len(got.Signal) != 2 || got.Signal[1][1] != 0.4 {
		t.Fatalf("signal round trip: %+v", got.Signal)
	}
	if next.ID != id {
		t.Fatalf("cursor: %+v", next)
	}

	pred := rules.Prediction{IsAbnormal: true, AbnormalScore: 0.7, Findings: []string{"Sinus tachycardia"}}
	if err := r.InsertPrediction(ctx, domain.PredictionWrite{RecordID: id, Prediction: pred}); err != nil {
		t.Fatalf("insert prediction: %v", err)
	}
	// upsert path
	pred.AbnormalScore = 0.9
	if err := r.InsertPrediction(ctx, domain.PredictionWrite{RecordID: id, Prediction: pred}); err != nil {
		t.Fatalf("upsert prediction: %v", err)
	}

	if err := r.MarkProcessed(ctx, []string{id}); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	rows, _, err = r.ListPending(ctx, domain.AfterKey{}, 10)
	if err != nil {
		t.Fatalf("list after processing: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("processed record still pending: %+v", rows)
	}
}

func TestRepo_Integration_KeysetPaging(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r := newTestRepo(t, ctx, dsn)

	ids := make(map[string]bool, 5)
	for i := 0; i < 5; i++ {
		id := uuid.NewString()
		ids[id] = true
		err := r.Insert(ctx, domain.RecordWrite{
			ID:           id,
			AgeDays:      i * 100,
			SamplingRate: 500,
			Signal:       [][]float64{{float64(i)}},
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	seen := map[string]bool{}
	var after domain.AfterKey
	for {
		rows, next, err := r.ListPending(ctx, after, 2)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		if len(rows) == 0 {
			break
		}
		for _, rec := range rows {
			if seen[rec.ID] {
				t.Fatalf("record %s returned twice", rec.ID)
			}
			seen[rec.ID] = true
		}
		after = next
	}
	if len(seen) != len(ids) {
		t.Fatalf("paged %d records, want %d", len(seen), len(ids))
	}
}
