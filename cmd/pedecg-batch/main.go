package main

import (
	"context"
	"flag"

	"pedecg/internal/platform/config"
	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/store"
	recrepo "pedecg/internal/services/records/repo"
	recsvc "pedecg/internal/services/records/service"
	vecrepo "pedecg/internal/services/vectorize/repo"
	vecsvc "pedecg/internal/services/vectorize/service"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("PEDECG_PGSQL_")
	chCfg := root.Prefix("PEDECG_CLICKHOUSE_")
	l := logger.Get()

	var (
		workers = flag.Int("workers", 4, "concurrency (>=1)")
		page    = flag.Int("page", 100, "page size (records)")
		dryRun  = flag.Bool("dry-run", false, "compute but do not write")
	)
	flag.Parse()

	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		AppName: "batch",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:  true,
			Addr:     chCfg.MustString("ADDR"),
			Database: chCfg.MayString("DB", "default"),
			Username: chCfg.MayString("USER", "default"),
			Password: chCfg.MayString("PASSWORD", ""),
		},
	})
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer st.Close()

	repo := recrepo.NewPG(st.PG.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		l.Panic().Err(err).Msg("schema setup failed")
	}
	records := recsvc.New(repo, recsvc.Config{HardLimit: *page})

	sink := vecrepo.NewCH(st.CH)
	if err := sink.EnsureTable(ctx); err != nil {
		l.Panic().Err(err).Msg("vector table setup failed")
	}

	runner := vecsvc.New(records, sink, vecsvc.Config{
		Workers:  *workers,
		PageSize: *page,
		DryRun:   *dryRun,
	})

	stats, err := runner.Run(ctx)
	if err != nil {
		l.Panic().Err(err).Int("processed", stats.Processed).Msg("vectorization run failed")
	}
	l.Info().
		Int("processed", stats.Processed).
		Int("failed", stats.Failed).
		Int("pages", stats.Pages).
		Bool("dry_run", *dryRun).
		Msg("vectorization run finished")
}
