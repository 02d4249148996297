package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"antaran-be/internal/actor"
	"antaran-be/internal/inventory"
	"antaran-be/internal/metrics"
	"antaran-be/internal/order"

	"github.com/go-chi/chi/v5"
)

// Handler is the thin HTTP edge: decode, delegate to the services, encode.
// All business rules live behind order.Service.
type Handler struct {
	orders    order.Service
	inventory inventory.Service
}

func NewHandler(orders order.Service, inv inventory.Service) *Handler {
	return &Handler{orders: orders, inventory: inv}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps service error kinds onto HTTP statuses.
func statusFor(err error) int {
	var stockErr *order.InsufficientStockError
	switch {
	case errors.Is(err, order.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound), errors.Is(err, inventory.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, order.ErrAgentNotEligible):
		return http.StatusForbidden
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, order.ErrInvalidPin):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func mustActor(w http.ResponseWriter, r *http.Request) (actor.Actor, bool) {
	act, ok := actor.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return act, ok
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}

	var draft order.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), act, &draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), act, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}

	f, limit, page, err := parseListQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	orders, err := h.orders.ListOrdersForActor(r.Context(), act, f, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// parseListQuery reads the optional list filters: status, from, to (RFC 3339),
// businessId, limit, page.
func parseListQuery(r *http.Request) (*order.Filter, *int32, *int32, error) {
	q := r.URL.Query()

	var f *order.Filter
	ensure := func() *order.Filter {
		if f == nil {
			f = &order.Filter{}
		}
		return f
	}

	if s := q.Get("status"); s != "" {
		status := order.Status(s)
		if !status.Valid() {
			return nil, nil, nil, fmt.Errorf("%w: unknown status %q", order.ErrValidation, s)
		}
		ensure().Status = &status
	}
	if s := q.Get("from"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: invalid from timestamp", order.ErrValidation)
		}
		ensure().DateFrom = &ts
	}
	if s := q.Get("to"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: invalid to timestamp", order.ErrValidation)
		}
		ensure().DateTo = &ts
	}
	if s := q.Get("businessId"); s != "" {
		ensure().BusinessID = &s
	}

	parseInt32 := func(name string) (*int32, error) {
		s := q.Get(name)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", order.ErrValidation, name)
		}
		v := int32(n)
		return &v, nil
	}

	limit, err := parseInt32("limit")
	if err != nil {
		return nil, nil, nil, err
	}
	page, err := parseInt32("page")
	if err != nil {
		return nil, nil, nil, err
	}
	return f, limit, page, nil
}

func (h *Handler) ListClaimable(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListClaimableOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type transitionReq struct {
	Target order.Status `json:"target"`
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}

	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.orders.Transition(r.Context(), act, chi.URLParam(r, "id"), req.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type verifyReq struct {
	Pin string `json:"pin"`
}

func (h *Handler) VerifyPickup(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.orders.VerifyPickup)
}

func (h *Handler) VerifyDelivery(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.orders.VerifyDelivery)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, act actor.Actor, orderID, pin string) (*order.Order, error)) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}

	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := fn(r.Context(), act, chi.URLParam(r, "id"), req.Pin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	entry, err := h.inventory.GetEntry(r.Context(), chi.URLParam(r, "storeID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type stockReq struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

func (h *Handler) PutInventory(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := h.inventory.Stock(r.Context(), chi.URLParam(r, "storeID"), chi.URLParam(r, "productID"), req.Quantity, req.UnitPrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"counters": map[string]uint64{
			"orders_placed":       metrics.OrdersPlaced.Load(),
			"orders_rejected":     metrics.OrdersRejected.Load(),
			"stock_shortfalls":    metrics.StockShortfalls.Load(),
			"transitions_applied": metrics.TransitionsApplied.Load(),
			"publish_failures":    metrics.PublishFailures.Load(),
		},
	})
}
