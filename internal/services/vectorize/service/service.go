// Package service implements the batch vectorizer: it pages pending
// ECG records out of Postgres, runs the rule engine and feature
// extractor over them, and writes predictions back to Postgres and
// vectors to clickhouse
package service

import (
	"context"
	"sync"
	"time"

	"pedecg/internal/core/delineate"
	"pedecg/internal/core/features"
	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
	"pedecg/internal/core/rules"
	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/metrics"
	recdom "pedecg/internal/services/records/domain"
	dom "pedecg/internal/services/vectorize/domain"
)

// Config for the batch vectorizer
type Config struct {
	Workers  int
	PageSize int
	DryRun   bool
}

// Storage is the records surface the runner needs
type Storage interface {
	recdom.ReaderPort
	InsertPrediction(ctx context.Context, pw recdom.PredictionWrite) error
	MarkProcessed(ctx context.Context, ids []string) error
}

// Service implements domain.RunnerPort
type Service struct {
	Records Storage
	Vectors dom.SinkPort
	Cfg     Config

	meas   *measure.Extractor
	feat   *features.Extractor
	engine *rules.Engine
}

// New constructs the batch vectorizer
func New(records Storage, vectors dom.SinkPort, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	det := delineate.NewDetector()
	tab := normals.Default()
	return &Service{
		Records: records,
		Vectors: vectors,
		Cfg:     cfg,
		meas:    measure.NewExtractor(det),
		feat:    features.NewExtractor(det, tab),
		engine:  rules.NewEngine(tab, rules.DefaultConfig()),
	}
}

type rowResult struct {
	prediction recdom.PredictionWrite
	vector     dom.VectorWrite
	failed     bool
}

// Run implements domain.RunnerPort. It drains the pending queue page
// by page until no records remain
func (s *Service) Run(ctx context.Context) (dom.RunStats, error) {
	log := logger.Named("vectorize")
	var stats dom.RunStats

	after := recdom.AfterKey{}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rows, next, err := s.Records.ListPending(ctx, after, s.Cfg.PageSize)
		if err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			log.Info().Int("processed", stats.Processed).Int("failed", stats.Failed).Int("pages", stats.Pages).Msg("run complete")
			return stats, nil
		}
		stats.Pages++

		out := make([]rowResult, len(rows))
		sem := make(chan struct{}, s.Cfg.Workers)
		wg := sync.WaitGroup{}
		for i := range rows {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer func() { <-sem; wg.Done() }()
				out[i] = s.process(rows[i])
			}(i)
		}
		wg.Wait()

		ids := make([]string, 0, len(rows))
		vecs := make([]dom.VectorWrite, 0, len(rows))
		for i := range out {
			if out[i].failed {
				stats.Failed++
				metrics.BatchRowsProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
			} else {
				metrics.BatchRowsProcessed.WithLabelValues(metrics.OutcomeOK).Inc()
			}
			stats.Processed++
			ids = append(ids, rows[i].ID)
			vecs = append(vecs, out[i].vector)
		}

		if !s.Cfg.DryRun {
			for i := range out {
				if err := s.Records.InsertPrediction(ctx, out[i].prediction); err != nil {
					return stats, err
				}
			}
			if err := s.Vectors.WriteBatch(ctx, vecs); err != nil {
				return stats, err
			}
			if err := s.Records.MarkProcessed(ctx, ids); err != nil {
				return stats, err
			}
		}

		after = next
	}
}

// process runs the pipeline for one record. Failures become zero
// vectors and empty predictions, never an aborted run
func (s *Service) process(rec recdom.Record) rowResult {
	m := s.meas.Extract(rec.Signal, rec.SamplingRate, rec.LeadNames)
	pred := s.engine.Classify(m, rec.AgeDays)
	feat := s.feat.FromMeasurements(m, rec.AgeDays)

	return rowResult{
		prediction: recdom.PredictionWrite{RecordID: rec.ID, Prediction: pred},
		vector: dom.VectorWrite{
			RecordID:  rec.ID,
			AgeDays:   rec.AgeDays,
			Vector:    feat.Vector(),
			Success:   feat.Success,
			Quality:   feat.Quality,
			CreatedAt: time.Now().UTC(),
		},
		failed: !feat.Success,
	}
}
