package stand

import (
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes market stand HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/stands", func(r chi.Router) {
		r.Get("/{id}", h.getStand) // GET  /api/v1/stands/{id}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCaller)
			r.Post("/", h.createStand) // POST /api/v1/stands
			r.Get("/mine", h.listMine) // GET  /api/v1/stands/mine
		})
	})
}

func (h *Handler) createStand(w http.ResponseWriter, r *http.Request) {
	var req CreateStandRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	st, err := h.service.CreateStand(r.Context(), auth.CallerFrom(r.Context()), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, st)
}

func (h *Handler) getStand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid id"))
		return
	}
	st, err := h.service.GetStand(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, st)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	stands, err := h.service.ListMine(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, stands)
}
