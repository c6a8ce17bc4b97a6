package order

import (
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes registers flat patterns rather than a mounted sub-router so
// other modules can add routes under /api/v1/orders/{id}.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/api/v1/orders", h.placeOrder)                                   // POST   /api/v1/orders
		r.Get("/api/v1/orders/mine", h.listMine)                                 // GET    /api/v1/orders/mine
		r.Get("/api/v1/orders/{id}", h.getOrder)                                 // GET    /api/v1/orders/{id}
		r.Patch("/api/v1/orders/{id}/status", h.updateStatus)                    // PATCH  /api/v1/orders/{id}/status
		r.Delete("/api/v1/orders/{id}", h.cancelOrder)                           // DELETE /api/v1/orders/{id}
		r.Get("/api/v1/orders/producers/{producer_id}/deliveries", h.deliveries) // GET    /api/v1/orders/producers/{producer_id}/deliveries
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), auth.CallerFrom(r.Context()), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.service.GetOrder(r.Context(), auth.CallerFrom(r.Context()), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, o)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListCustomerOrders(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, orders)
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
	o, err := h.service.UpdateStatus(r.Context(), auth.CallerFrom(r.Context()), id, req.Status)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.service.CancelOrder(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		web.Error(w, r, err)
		return
	}
	web.OK(w)
}

func (h *Handler) deliveries(w http.ResponseWriter, r *http.Request) {
	producerID, ok := pathID(w, r, "producer_id")
	if !ok {
		return
	}
	grouped, err := h.service.GetDeliveryOrdersByDayAndZone(r.Context(), auth.CallerFrom(r.Context()), producerID)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, grouped)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		web.Error(w, r, apperr.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
