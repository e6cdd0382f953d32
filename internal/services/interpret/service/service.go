// Package service runs the interpretation pipeline: measurements,
// rule classification, and the fusion feature vector
package service

import (
	"context"
	"time"

	"pedecg/internal/core/delineate"
	"pedecg/internal/core/features"
	"pedecg/internal/core/measure"
	"pedecg/internal/core/normals"
	"pedecg/internal/core/rules"
	"pedecg/internal/platform/cache"
	perr "pedecg/internal/platform/errors"
	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/metrics"
	dom "pedecg/internal/services/interpret/domain"

	"github.com/google/uuid"
)

// Config for the interpret service
type Config struct {
	CacheTTL time.Duration
}

// Service implements domain.InterpretPort
type Service struct {
	meas     *measure.Extractor
	feat     *features.Extractor
	engine   *rules.Engine
	tab      *normals.Table
	cache    cache.Cache
	recorder dom.RecorderPort
	cfg      Config
}

// New constructs the service. cache and recorder may be nil
func New(c cache.Cache, recorder dom.RecorderPort, cfg Config) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	det := delineate.NewDetector()
	tab := normals.Default()
	return &Service{
		meas:     measure.NewExtractor(det),
		feat:     features.NewExtractor(det, tab),
		engine:   rules.NewEngine(tab, rules.DefaultConfig()),
		tab:      tab,
		cache:    c,
		recorder: recorder,
		cfg:      cfg,
	}
}

// Interpret implements domain.InterpretPort
func (s *Service) Interpret(ctx context.Context, in dom.InterpretInput) (dom.InterpretResult, error) {
	start := time.Now()
	defer func() { metrics.InterpretDuration.Observe(time.Since(start).Seconds()) }()

	if err := validateSignal(in.Signal); err != nil {
		return dom.InterpretResult{}, err
	}

	key := cache.SignalKey(in.Signal, in.SamplingRate, in.AgeDays)
	var cached dom.InterpretResult
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.Named("interpret").Warn().Err(err).Msg("cache lookup failed")
	} else if hit {
		metrics.CacheHits.WithLabelValues(metrics.ResultHit).Inc()
		cached.Cached = true
		return cached, nil
	}
	metrics.CacheHits.WithLabelValues(metrics.ResultMiss).Inc()

	res := s.run(in)

	if res.Measurements.Success {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	} else {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	}
	metrics.ObservePrediction(res.Prediction.AbnormalScore)

	if in.Persist && s.recorder != nil {
		err := s.recorder.SaveRecord(ctx, dom.RecordWrite{
			RecordID:     res.RecordID,
			AgeDays:      in.AgeDays,
			SamplingRate: in.SamplingRate,
			LeadNames:    in.LeadNames,
			Signal:       in.Signal,
		})
		if err != nil {
			return dom.InterpretResult{}, perr.Wrap(err, perr.ErrorCodeDB, "persist record")
		}
	}

	if err := s.cache.Set(ctx, key, res, s.cfg.CacheTTL); err != nil {
		logger.Named("interpret").Warn().Err(err).Msg("cache store failed")
	}
	return res, nil
}

// run executes the pipeline itself, with one delineation pass shared
// by measurements, rules, and features
func (s *Service) run(in dom.InterpretInput) dom.InterpretResult {
	signal := orient(in.Signal)
	m := s.meas.Extract(signal, in.SamplingRate, leadNames(in.LeadNames, len(signal)))
	return dom.InterpretResult{
		RecordID:     uuid.NewString(),
		AgeDays:      in.AgeDays,
		AgeBucket:    s.tab.ResolveBucket(in.AgeDays),
		Measurements: m,
		Prediction:   s.engine.Classify(m, in.AgeDays),
		Features:     s.feat.FromMeasurements(m, in.AgeDays),
	}
}

// NormalsForAge implements domain.InterpretPort
func (s *Service) NormalsForAge(_ context.Context, ageDays int) (dom.NormalsResult, error) {
	if ageDays < 0 {
		ageDays = 0
	}
	return dom.NormalsResult{
		AgeDays:   ageDays,
		AgeBucket: s.tab.ResolveBucket(ageDays),
		Normals:   s.tab.ForAge(ageDays),
	}, nil
}

func validateSignal(signal [][]float64) error {
	if len(signal) == 0 {
		return perr.InvalidArgf("signal must not be empty")
	}
	width := len(signal[0])
	if width == 0 {
		return perr.InvalidArgf("signal rows must not be empty")
	}
	for i, row := range signal {
		if len(row) != width {
			return perr.InvalidArgf("signal row %d has %d samples, expected %d", i, len(row), width)
		}
	}
	return nil
}

// orient flips samples x leads input into leads x samples
func orient(signal [][]float64) [][]float64 {
	if len(signal) == 0 || len(signal) <= len(signal[0]) {
		return signal
	}
	out := make([][]float64, len(signal[0]))
	for j := range out {
		out[j] = make([]float64, len(signal))
		for i := range signal {
			out[j][i] = signal[i][j]
		}
	}
	return out
}

func leadNames(names []string, n int) []string {
	if names != nil {
		return names
	}
	std := []string{"I", "II", "III", "aVR", "aVL", "aVF", "V1", "V2", "V3", "V4", "V5", "V6"}
	if n > len(std) {
		n = len(std)
	}
	return std[:n]
}
