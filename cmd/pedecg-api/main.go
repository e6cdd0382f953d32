// @title         pedecg API
// @version       0.1.0
// @description   Age-adjusted pediatric ECG interpretation

package main

import (
	"context"

	"pedecg/internal/platform/cache"
	"pedecg/internal/platform/config"
	"pedecg/internal/platform/logger"
	phttp "pedecg/internal/platform/net/http"
	"pedecg/internal/platform/store"
	"pedecg/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("PEDECG_API_")
	pgCfg := root.Prefix("PEDECG_PGSQL_")
	chCfg := root.Prefix("PEDECG_CLICKHOUSE_")
	rdsCfg := root.Prefix("PEDECG_REDIS_")

	l := logger.Get()

	ctx := context.Background()

	// postgres is optional for the API; without it the persist flag is
	// a no-op and records cannot be queued for batch vectorization
	st, err := store.Open(ctx, store.Config{
		AppName: "api",
		PG: store.PGConfig{
			Enabled:     pgCfg.MayBool("ENABLED", false),
			URL:         pgCfg.MayString("DBURL", ""),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:  chCfg.MayBool("ENABLED", false),
			Addr:     chCfg.MayString("ADDR", "localhost:9000"),
			Database: chCfg.MayString("DB", "default"),
			Username: chCfg.MayString("USER", "default"),
			Password: chCfg.MayString("PASSWORD", ""),
		},
	})
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer st.Close()

	c, err := cache.Open(cache.Config{
		URL:     rdsCfg.MayString("URL", ""),
		Default: rdsCfg.MayDuration("TTL", 0),
	})
	if err != nil {
		l.Panic().Err(err).Msg("cache.Open failed")
	}
	defer func() {
		if err := c.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close cache")
		}
	}()

	// http server (reads PEDECG_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         apiCfg,
		Store:          st,
		Cache:          c,
		Logger:         l,
		// off by default until generated docs are checked in; the mount
		// serves only the UI shell without a doc.json
		EnableSwagger:  apiCfg.MayBool("SWAGGER", false),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
