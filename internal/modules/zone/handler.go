package zone

import (
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes delivery zone HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/zones", func(r chi.Router) {
		r.Get("/{id}", h.getZone)      // GET    /api/v1/zones/{id}
		r.Post("/{id}/quote", h.quote) // POST   /api/v1/zones/{id}/quote

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCaller)
			r.Post("/", h.createZone)                             // POST   /api/v1/zones
			r.Get("/mine", h.listMyZones)                         // GET    /api/v1/zones/mine
			r.Get("/producer/{producer_id}", h.listProducerZones) // GET    /api/v1/zones/producer/{producer_id}
			r.Patch("/{id}", h.updateZone)                        // PATCH  /api/v1/zones/{id}
			r.Delete("/{id}", h.deactivateZone)                   // DELETE /api/v1/zones/{id}
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/{id}/flag", h.flag)           // POST   /api/v1/zones/{id}/flag
			r.Post("/{id}/unflag", h.unflag)       // POST   /api/v1/zones/{id}/unflag
			r.Post("/{id}/suspend", h.suspend)     // POST   /api/v1/zones/{id}/suspend
			r.Post("/{id}/unsuspend", h.unsuspend) // POST   /api/v1/zones/{id}/unsuspend
		})
	})
}

func (h *Handler) createZone(w http.ResponseWriter, r *http.Request) {
	var req CreateZoneRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	z, err := h.service.CreateZone(r.Context(), auth.CallerFrom(r.Context()), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, z)
}

func (h *Handler) getZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	z, err := h.service.GetZone(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, z)
}

func (h *Handler) listProducerZones(w http.ResponseWriter, r *http.Request) {
	producerID, ok := pathID(w, r, "producer_id")
	if !ok {
		return
	}
	zones, err := h.service.ListProducerZones(r.Context(), auth.CallerFrom(r.Context()), producerID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, zones)
}

func (h *Handler) listMyZones(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFrom(r.Context())
	zones, err := h.service.ListProducerZones(r.Context(), caller, caller.ID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, zones)
}

func (h *Handler) updateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateZoneRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	z, err := h.service.UpdateZone(r.Context(), auth.CallerFrom(r.Context()), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, z)
}

func (h *Handler) deactivateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.service.DeactivateZone(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		web.Error(w, r, err)
		return
	}
	web.OK(w)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req QuoteRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	q, err := h.service.Quote(r.Context(), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, q)
}

func (h *Handler) flag(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID, reason string) (*DeliveryZone, error) {
		return h.service.FlagZone(r.Context(), auth.CallerFrom(r.Context()), id, reason)
	})
}

func (h *Handler) unflag(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID, _ string) (*DeliveryZone, error) {
		return h.service.UnflagZone(r.Context(), auth.CallerFrom(r.Context()), id)
	})
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID, reason string) (*DeliveryZone, error) {
		return h.service.SuspendZone(r.Context(), auth.CallerFrom(r.Context()), id, reason)
	})
}

func (h *Handler) unsuspend(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID, _ string) (*DeliveryZone, error) {
		return h.service.UnsuspendZone(r.Context(), auth.CallerFrom(r.Context()), id)
	})
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, apply func(uuid.UUID, string) (*DeliveryZone, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ModerationRequest
	if r.ContentLength != 0 {
		if err := web.Decode(r, &req); err != nil {
			web.Error(w, r, err)
			return
		}
	}
	z, err := apply(id, req.Reason)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, z)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
