// Package ch provides a clickhouse client for feature vector storage
package ch

import (
	"context"
	"time"

	"pedecg/internal/platform/logger"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures the clickhouse connection
type Config struct {
	Addr     string // host:port
	Database string
	Username string
	Password string
	Role     string // reported via client info, e.g. "api" or "batch"
}

// CH wraps a clickhouse connection
type CH struct {
	Conn driver.Conn
}

// Open dials clickhouse and verifies the connection
func Open(ctx context.Context, cfg Config) (*CH, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo:  BuildClientInfo(cfg.Role, ""),
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Named("ch").Info().Str("addr", cfg.Addr).Str("db", cfg.Database).Msg("clickhouse connected")
	return &CH{Conn: conn}, nil
}

// PrepareBatch starts a batch insert for the given INSERT statement
func (c *CH) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return c.Conn.PrepareBatch(ctx, query)
}

// Query runs a query and returns driver rows
func (c *CH) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	return c.Conn.Query(ctx, query, args...)
}

// Exec runs a statement without results
func (c *CH) Exec(ctx context.Context, query string, args ...any) error {
	return c.Conn.Exec(ctx, query, args...)
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error {
	return c.Conn.Ping(ctx)
}

// Close closes the connection
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
