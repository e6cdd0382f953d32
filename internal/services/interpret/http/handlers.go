// Package http provides http transport for the interpret service
package http

import (
	stdhttp "net/http"
	"strconv"

	perr "pedecg/internal/platform/errors"
	phttp "pedecg/internal/platform/net/http"
	"pedecg/internal/services/interpret/domain"

	"github.com/go-chi/chi/v5"
)

// Register mounts interpret endpoints on the given router
func Register(r phttp.Router, s domain.InterpretPort) {
	h := &handlers{svc: s}

	r.Post("/interpret", phttp.JSONHandler(h.interpret))
	r.Get("/normals/{ageDays}", phttp.Handle(h.normalsForAge))
}

type handlers struct{ svc domain.InterpretPort }

// @Summary Interpret a pediatric ECG
// @Tags Interpret
// @Accept json
// @Produce json
// @Param payload body domain.InterpretInput true "Signal and patient age"
// @Success 200 {object} domain.InterpretResult "ok"
// @Router /v1/interpret [post]
func (h *handlers) interpret(r *stdhttp.Request, in domain.InterpretInput) (any, error) {
	return h.svc.Interpret(r.Context(), in)
}

// @Summary Normal ranges for an age
// @Tags Interpret
// @Produce json
// @Param ageDays path int true "Age in days"
// @Success 200 {object} domain.NormalsResult "ok"
// @Router /v1/normals/{ageDays} [get]
func (h *handlers) normalsForAge(r *stdhttp.Request) phttp.Response {
	raw := chi.URLParam(r, "ageDays")
	ageDays, err := strconv.Atoi(raw)
	if err != nil {
		return phttp.Error(perr.InvalidArgf("ageDays must be an integer, got %q", raw))
	}
	out, err := h.svc.NormalsForAge(r.Context(), ageDays)
	if err != nil {
		return phttp.Error(err)
	}
	return phttp.OK(out)
}
