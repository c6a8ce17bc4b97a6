package issue

import (
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes order issue HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/api/v1/orders/{id}/issues", h.report)      // POST   /api/v1/orders/{id}/issues
		r.Get("/api/v1/orders/{id}/issues", h.listForOrder) // GET    /api/v1/orders/{id}/issues
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/api/v1/admin/issues", h.listOpen)            // GET    /api/v1/admin/issues
		r.Patch("/api/v1/admin/issues/{id}", h.updateStatus) // PATCH  /api/v1/admin/issues/{id}
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReportRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	i, err := h.service.Report(r.Context(), auth.CallerFrom(r.Context()), orderID, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, i)
}

func (h *Handler) listForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	issues, err := h.service.ListForOrder(r.Context(), auth.CallerFrom(r.Context()), orderID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, issues)
}

func (h *Handler) listOpen(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.ListOpen(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, issues)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	i, err := h.service.UpdateStatus(r.Context(), auth.CallerFrom(r.Context()), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, i)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
