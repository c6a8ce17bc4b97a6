package auth

import (
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(RequireCaller).Get("/api/v1/auth/me", h.me)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, CallerFrom(r.Context()))
}
