package approval

import (
	"context"
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the admin review endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the review routes; {kind} is "stands" or "products".
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/api/v1/admin/{kind}/pending", h.listPending)   // GET  /api/v1/admin/{kind}/pending
		r.Post("/api/v1/admin/{kind}/{id}/approve", h.approve) // POST /api/v1/admin/{kind}/{id}/approve
		r.Post("/api/v1/admin/{kind}/{id}/reject", h.reject)   // POST /api/v1/admin/{kind}/{id}/reject
		r.Get("/api/v1/admin/{kind}/{id}/history", h.history)  // GET  /api/v1/admin/{kind}/{id}/history
	})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	items, err := h.service.ListPending(r.Context(), auth.CallerFrom(r.Context()), kind)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, items)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

type decideFunc func(ctx context.Context, caller *auth.Caller, kind EntityKind, id uuid.UUID, note string) (*Decision, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, apply decideFunc) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if r.ContentLength != 0 {
		if err := web.Decode(r, &req); err != nil {
			web.Error(w, r, err)
			return
		}
	}
	note := ""
	if req.Note != nil {
		note = *req.Note
	}
	d, err := apply(r.Context(), auth.CallerFrom(r.Context()), kind, id, note)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, d)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rows, err := h.service.History(r.Context(), auth.CallerFrom(r.Context()), kind, id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, rows)
}

func pathKind(w http.ResponseWriter, r *http.Request) (EntityKind, bool) {
	kind, ok := ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		web.Error(w, r, apperr.NotFound("unknown review kind"))
		return "", false
	}
	return kind, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
