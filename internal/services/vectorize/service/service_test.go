package service

import (
	"context"
	"testing"

	recdom "pedecg/internal/services/records/domain"
	dom "pedecg/internal/services/vectorize/domain"
)

// syntheticLead builds a flat trace with a triangular QRS complex
// every periodSamples samples
func syntheticLead(length, periodSamples int) []float64 {
	out := make([]float64, length)
	for beat := periodSamples; beat+8 < length; beat += periodSamples {
		for k := -7; k <= 7; k++ {
			if k < 0 {
				out[beat+k] = 1.2 * (1 + float64(k)/8)
			} else {
				out[beat+k] = 1.2 * (1 - float64(k)/8)
			}
		}
	}
	return out
}

type fakeStorage struct {
	pages       [][]recdom.Record
	page        int
	predictions []recdom.PredictionWrite
	processed   []string
}

func (f *fakeStorage) ListPending(_ context.Context, _ recdom.AfterKey, _ int) ([]recdom.Record, recdom.AfterKey, error) {
	if f.page >= len(f.pages) {
		return nil, recdom.AfterKey{}, nil
	}
	rows := f.pages[f.page]
	f.page++
	var next recdom.AfterKey
	if len(rows) > 0 {
		next = recdom.AfterKey{ID: rows[len(rows)-1].ID}
	}
	return rows, next, nil
}

func (f *fakeStorage) InsertPrediction(_ context.Context, pw recdom.PredictionWrite) error {
	f.predictions = append(f.predictions, pw)
	return nil
}

func (f *fakeStorage) MarkProcessed(_ context.Context, ids []string) error {
	f.processed = append(f.processed, ids...)
	return nil
}

type fakeSink struct {
	written []dom.VectorWrite
}

func (f *fakeSink) WriteBatch(_ context.Context, xs []dom.VectorWrite) error {
	f.written = append(f.written, xs...)
	return nil
}

func goodRecord(id string) recdom.Record {
	return recdom.Record{
		ID:           id,
		AgeDays:      365,
		SamplingRate: 500,
		Signal:       [][]float64{syntheticLead(5000, 300)},
	}
}

func flatRecord(id string) recdom.Record {
	return recdom.Record{
		ID:           id,
		AgeDays:      365,
		SamplingRate: 500,
		Signal:       [][]float64{make([]float64, 2000)},
	}
}

func TestRun_DrainsQueue(t *testing.T) {
	storage := &fakeStorage{pages: [][]recdom.Record{
		{goodRecord("a"), goodRecord("b")},
		{goodRecord("c")},
	}}
	sink := &fakeSink{}
	s := New(storage, sink, Config{Workers: 2, PageSize: 2})

	stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 3 || stats.Pages != 2 {
		t.Fatalf("stats: %+v", stats)
	}
	if len(storage.predictions) != 3 {
		t.Fatalf("predictions = %d", len(storage.predictions))
	}
	if len(sink.written) != 3 {
		t.Fatalf("vectors = %d", len(sink.written))
	}
	if len(storage.processed) != 3 {
		t.Fatalf("processed = %d", len(storage.processed))
	}
}

func TestRun_FailedRowDoesNotAbort(t *testing.T) {
	storage := &fakeStorage{pages: [][]recdom.Record{
		{goodRecord("good"), flatRecord("bad")},
	}}
	sink := &fakeSink{}
	s := New(storage, sink, Config{})

	stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 2 || stats.Failed != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	byID := map[string]dom.VectorWrite{}
	for _, v := range sink.written {
		byID[v.RecordID] = v
	}
	bad := byID["bad"]
	if bad.Success {
		t.Fatal("flat record should fail extraction")
	}
	for i, v := range bad.Vector {
		if v != 0 {
			t.Fatalf("failed row slot %d nonzero", i)
		}
	}
	good := byID["good"]
	if !good.Success || good.Vector[0] == 0 {
		t.Fatalf("good row: %+v", good)
	}
	// the failed record is still marked processed so it is not retried forever
	if len(storage.processed) != 2 {
		t.Fatalf("processed = %v", storage.processed)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	storage := &fakeStorage{pages: [][]recdom.Record{{goodRecord("a")}}}
	sink := &fakeSink{}
	s := New(storage, sink, Config{DryRun: true})

	stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	if len(storage.predictions) != 0 || len(sink.written) != 0 || len(storage.processed) != 0 {
		t.Fatal("dry run must not write")
	}
}
