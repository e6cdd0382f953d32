package http

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler exposes net/http/pprof under the given prefix.
// Keep this off public listeners
func MountProfiler(r Router, prefix string) {
	if prefix == "" {
		prefix = "/debug"
	}
	r.Handle(prefix+"/*", http.StripPrefix(prefix, chimw.Profiler()))
}
