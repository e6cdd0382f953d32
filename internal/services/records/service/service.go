// Package service provides the records service implementation
package service

import (
	"context"

	perr "pedecg/internal/platform/errors"
	intdom "pedecg/internal/services/interpret/domain"
	dom "pedecg/internal/services/records/domain"

	"github.com/google/uuid"
)

// Config for the records service
type Config struct {
	HardLimit int
}

// Storage is the repository surface the service needs
type Storage interface {
	dom.WriterPort
	dom.ReaderPort
}

// Service implements domain.WriterPort and domain.ReaderPort and
// adapts them to the interpret service's recorder port
type Service struct {
	Storage Storage
	Cfg     Config
}

// New constructs the records service
func New(storage Storage, cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 200
	}
	return &Service{Storage: storage, Cfg: cfg}
}

// Insert implements domain.WriterPort
func (s *Service) Insert(ctx context.Context, rec dom.RecordWrite) error {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return perr.InvalidArgf("record id %q is not a uuid", rec.ID)
	}
	if len(rec.Signal) == 0 {
		return perr.InvalidArgf("record %s has an empty signal", rec.ID)
	}
	return s.Storage.Insert(ctx, rec)
}

// InsertPrediction implements domain.WriterPort
func (s *Service) InsertPrediction(ctx context.Context, pw dom.PredictionWrite) error {
	return s.Storage.InsertPrediction(ctx, pw)
}

// MarkProcessed implements domain.WriterPort
func (s *Service) MarkProcessed(ctx context.Context, ids []string) error {
	return s.Storage.MarkProcessed(ctx, ids)
}

// ListPending implements domain.ReaderPort
func (s *Service) ListPending(ctx context.Context, after dom.AfterKey, limit int) ([]dom.Record, dom.AfterKey, error) {
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	return s.Storage.ListPending(ctx, after, limit)
}

// SaveRecord implements the interpret service's RecorderPort
func (s *Service) SaveRecord(ctx context.Context, rec intdom.RecordWrite) error {
	return s.Insert(ctx, dom.RecordWrite{
		ID:           rec.RecordID,
		AgeDays:      rec.AgeDays,
		SamplingRate: rec.SamplingRate,
		LeadNames:    rec.LeadNames,
		Signal:       rec.Signal,
	})
}
