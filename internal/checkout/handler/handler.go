package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flangoapp/flango-pos-service/internal/checkout"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/order"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	orders   *order.Service
	sales    sales.UseCase
	session  *session.Session
	snapshot *limits.SnapshotHolder
	logger   logger.ZapLogger
}

func NewCheckoutHandler(co *checkout.Service, orders *order.Service, salesUC sales.UseCase, sess *session.Session, snap *limits.SnapshotHolder, log logger.ZapLogger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: co,
		orders:   orders,
		sales:    salesUC,
		session:  sess,
		snapshot: snap,
		logger:   log,
	}
}

func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/customers/{id}/select", h.SelectCustomer)
	r.Post("/customers/deselect", h.DeselectCustomer)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items", h.RemoveItem) // last line
	r.Delete("/cart/items/{index}", h.RemoveItem)
	r.Get("/cart", h.GetCart)
	r.Post("/checkout", h.Checkout)
	r.Post("/checkout/undo-last", h.UndoLast)
}

func (h *CheckoutHandler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	customer, err := h.sales.GetCustomer(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load customer", zap.String("customer_id", id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if customer == nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	h.session.SetCurrentCustomer(customer)
	h.snapshot.SetChild(customer.ID, h.session.ClubID())
	writeJSON(w, http.StatusOK, customer)
}

func (h *CheckoutHandler) DeselectCustomer(w http.ResponseWriter, r *http.Request) {
	h.session.ClearCurrentCustomer()
	h.orders.Cart().Clear()
	h.snapshot.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.orders.AddProduct(r.Context(), body.ProductID)
	if err != nil {
		h.logger.Error("failed to add product to order",
			zap.String("product_id", body.ProductID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}

// RemoveItem removes the line at {index}, defaulting to the last line when no
// index is given.
func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index := -1
	if raw := chi.URLParam(r, "index"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}
		index = parsed
	}

	removed := h.orders.RemoveProduct(index)
	if removed == nil {
		http.Error(w, "nothing to remove", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *CheckoutHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lines":      h.orders.Cart().Lines(),
		"evaluation": h.checkout.Evaluate(),
	})
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	result, err := h.checkout.Checkout(r.Context(), body.Confirm)
	if err != nil {
		h.logger.Error("checkout failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, statusFor(result), result)
}

func (h *CheckoutHandler) UndoLast(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChildID string `json:"child_id"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.checkout.UndoLastSale(r.Context(), body.ChildID, body.Confirm)
	if err != nil {
		h.logger.Error("undo last sale failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, statusFor(result), result)
}

func statusFor(result *checkout.Result) int {
	switch result.Status {
	case checkout.StatusCommitted:
		return http.StatusOK
	case checkout.StatusConfirmRequired:
		return http.StatusAccepted
	case checkout.StatusFailed:
		return http.StatusBadGateway
	default:
		return http.StatusConflict
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
