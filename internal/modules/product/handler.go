package product

import (
	"net/http"
	"strconv"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes product HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/nearby", h.listNearby) // GET    /api/v1/products/nearby?lat=&lng=&radius_km=
		r.Get("/{id}", h.getProduct)   // GET    /api/v1/products/{id}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCaller)
			r.Post("/", h.createProduct)                          // POST   /api/v1/products
			r.Get("/mine", h.listMine)                            // GET    /api/v1/products/mine
			r.Patch("/{id}", h.updateProduct)                     // PATCH  /api/v1/products/{id}
			r.Put("/{id}/schedule", h.setSchedule)                // PUT    /api/v1/products/{id}/schedule
			r.Put("/{id}/delivery-dates", h.setDates)             // PUT    /api/v1/products/{id}/delivery-dates
			r.Patch("/{id}/schedule/{day}", h.updateDayInventory) // PATCH  /api/v1/products/{id}/schedule/{day}
			r.Delete("/{id}/schedule", h.clearSchedule)           // DELETE /api/v1/products/{id}/schedule
		})
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), auth.CallerFrom(r.Context()), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListMine(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, products)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), auth.CallerFrom(r.Context()), id, req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) listNearby(w http.ResponseWriter, r *http.Request) {
	q, err := parseNearby(r)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	listings, err := h.service.ListNearby(r.Context(), q)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, listings)
}

func (h *Handler) setSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.SetRecurringSchedule(r.Context(), auth.CallerFrom(r.Context()), id, req.Schedule)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) setDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req DatesRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	p, err := h.service.SetOneTimeDates(r.Context(), auth.CallerFrom(r.Context()), id, req.Dates)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateDayInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req InventoryRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	if req.Inventory == nil {
		web.Error(w, r, apperr.ValidationFields("invalid inventory", map[string]string{"inventory": "is required"}))
		return
	}
	day := Weekday(chi.URLParam(r, "day"))
	p, err := h.service.UpdateDayInventory(r.Context(), auth.CallerFrom(r.Context()), id, day, *req.Inventory)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) clearSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.ClearSchedule(r.Context(), auth.CallerFrom(r.Context()), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func parseNearby(r *http.Request) (NearbyQuery, error) {
	var q NearbyQuery
	fields := map[string]string{}
	values := r.URL.Query()
	parse := func(name string, dst *float64, required bool) {
		raw := values.Get(name)
		if raw == "" {
			if required {
				fields[name] = "is required"
			}
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields[name] = "must be a number"
			return
		}
		*dst = v
	}
	parse("lat", &q.Lat, true)
	parse("lng", &q.Lng, true)
	parse("radius_km", &q.RadiusKm, false)
	if len(fields) > 0 {
		return q, apperr.ValidationFields("invalid location", fields)
	}
	return q, nil
}
