// Package api mounts the HTTP surface: interpret endpoints, health,
// metrics, swagger, and profiler
package api

import (
	"context"
	stdhttp "net/http"
	"time"

	"pedecg/internal/platform/cache"
	"pedecg/internal/platform/config"
	"pedecg/internal/platform/logger"
	"pedecg/internal/platform/metrics"
	phttp "pedecg/internal/platform/net/http"
	"pedecg/internal/platform/net/middleware"
	"pedecg/internal/platform/store"
	intdom "pedecg/internal/services/interpret/domain"
	inthttp "pedecg/internal/services/interpret/http"
	intsvc "pedecg/internal/services/interpret/service"
	recrepo "pedecg/internal/services/records/repo"
	recsvc "pedecg/internal/services/records/service"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Cache          cache.Cache
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API onto the given router
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.Defaults()...)
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		Slow: opt.Config.MayDuration("SLOW_REQUEST", 2*time.Second),
	}))
	r.Use(middleware.CORS(middleware.CORSOptions{}))

	r.Get("/healthz", phttp.Handle(healthHandler(opt.Store)))
	r.Handle("/metrics", metrics.Handler())

	if opt.EnableSwagger {
		phttp.MountSwagger(r, "/swagger")
	}
	if opt.EnableProfiler {
		phttp.MountProfiler(r, "/debug")
	}

	var recorder intdom.RecorderPort
	if opt.Store != nil && opt.Store.PG != nil {
		recorder = recsvc.New(recrepo.NewPG(opt.Store.PG.Pool), recsvc.Config{})
	}

	svc := intsvc.New(opt.Cache, recorder, intsvc.Config{
		CacheTTL: opt.Config.MayDuration("CACHE_TTL", 15*time.Minute),
	})

	r.Route("/v1", func(rr phttp.Router) {
		inthttp.Register(rr, svc)
	})
}

type healthStatus struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres,omitempty"`
	CH       string `json:"clickhouse,omitempty"`
}

func healthHandler(st *store.Store) func(*stdhttp.Request) phttp.Response {
	return func(r *stdhttp.Request) phttp.Response {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		h := healthStatus{Status: "ok"}
		if st != nil && st.PG != nil {
			h.Postgres = "ok"
			if err := st.PG.Ping(ctx); err != nil {
				h.Postgres = "down"
				h.Status = "degraded"
			}
		}
		if st != nil && st.CH != nil {
			h.CH = "ok"
			if err := st.CH.Ping(ctx); err != nil {
				h.CH = "down"
				h.Status = "degraded"
			}
		}
		return phttp.OK(h)
	}
}
