package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/checkout"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/internal/sales/dto"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SalesHandler struct {
	uc       sales.UseCase
	checkout *checkout.Service
	session  *session.Session
	logger   logger.ZapLogger
}

func NewSalesHandler(uc sales.UseCase, co *checkout.Service, sess *session.Session, log logger.ZapLogger) *SalesHandler {
	return &SalesHandler{uc: uc, checkout: co, session: sess, logger: log}
}

func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales/today", h.TodaysSales)
	r.Get("/sales/history", h.History)
	r.Post("/deposits", h.Deposit)
	r.Post("/customers/{id}/balance", h.SetBalance)
}

func (h *SalesHandler) TodaysSales(w http.ResponseWriter, r *http.Request) {
	childID := r.URL.Query().Get("child_id")
	if childID == "" {
		http.Error(w, "child_id is required", http.StatusBadRequest)
		return
	}

	rows, err := h.uc.TodaysSalesForChild(r.Context(), childID, h.session.ClubID())
	if err != nil {
		h.logger.Error("failed to load today's sales",
			zap.String("child_id", childID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func (h *SalesHandler) History(w http.ResponseWriter, r *http.Request) {
	filters := &dto.SaleFilters{
		ClubID:     h.session.ClubID(),
		CustomerID: r.URL.Query().Get("child_id"),
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "page_size", 50),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = &t
		}
	}

	items, count, err := h.uc.ListSales(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list sales", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sales": items, "count": count})
}

func (h *SalesHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var input dto.DepositInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.CustomerID == "" {
		http.Error(w, "customer_id and amount are required", http.StatusBadRequest)
		return
	}

	newBalance, err := h.uc.ApplyDeposit(r.Context(), &input)
	if err != nil {
		h.logger.Error("failed to apply deposit",
			zap.String("customer_id", input.CustomerID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.checkout.ApplyExternalBalance(model.BalanceEvent{
		UserID:     input.CustomerID,
		NewBalance: newBalance,
		Delta:      input.Amount,
		Source:     model.BalanceSourceDeposit,
	})

	writeJSON(w, http.StatusOK, map[string]float64{"new_balance": newBalance})
}

func (h *SalesHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Balance float64 `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	customerID := chi.URLParam(r, "id")

	current, err := h.uc.GetCustomer(r.Context(), customerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if current == nil {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	newBalance, err := h.uc.SetBalance(r.Context(), customerID, body.Balance)
	if err != nil {
		h.logger.Error("failed to set balance",
			zap.String("customer_id", customerID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.checkout.ApplyExternalBalance(model.BalanceEvent{
		UserID:     customerID,
		NewBalance: newBalance,
		Delta:      newBalance - current.Balance,
		Source:     model.BalanceSourceEdit,
	})

	writeJSON(w, http.StatusOK, map[string]float64{"new_balance": newBalance})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
