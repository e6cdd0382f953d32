// Package store opens and aggregates the storage backends
package store

import (
	"context"
	"fmt"
	"time"

	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/store/ch"
	"pedecg/internal/platform/store/pg"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled  bool
	Addr     string
	Database string
	Username string
	Password string
}

// Store holds the opened backends. Backends not enabled in cfg stay nil
type Store struct {
	Log logger.Logger
	PG  *pg.PG
	CH  *ch.CH
}

// Open constructs a Store with the requested backends
func Open(ctx context.Context, cfg Config) (*Store, error) {
	s := &Store{Log: *logger.Named("store")}

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = p
	}

	if cfg.CH.Enabled {
		c, err := ch.Open(ctx, ch.Config{
			Addr:     cfg.CH.Addr,
			Database: cfg.CH.Database,
			Username: cfg.CH.Username,
			Password: cfg.CH.Password,
			Role:     cfg.AppName,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.CH = c
	}

	return s, nil
}

// openPG opens the pool and pings with retry so boot survives a
// database that is still coming up
func openPG(ctx context.Context, cfg Config, s *Store) (*pg.PG, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	const (
		maxAttempts    = 20
		pingTimeout    = 3 * time.Second
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < maxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", maxAttempts, lastErr)
}

// Close shuts down whatever was opened
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			s.Log.Warn().Err(err).Msg("clickhouse close")
		}
	}
	if s.PG != nil {
		s.PG.Close()
	}
}
