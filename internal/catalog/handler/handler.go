package handler

import (
	"encoding/json"
	"net/http"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	uc       catalog.UseCase
	session  *session.Session
	snapshot *limits.SnapshotHolder
	logger   logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, sess *session.Session, snap *limits.SnapshotHolder, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{uc: uc, session: sess, snapshot: snap, logger: log}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Post("/products/{id}/enabled", h.SetEnabled)
}

type productView struct {
	model.Product
	Limit *model.LimitSnapshotEntry `json:"limit,omitempty"`
}

// ListProducts returns the grid: enabled products plus, when a child is
// selected, their per-product limit state so the UI can lock tiles without
// one round-trip per product.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.uc.ListProducts(r.Context(), &dto.ProductFilters{
		ClubID:      h.session.ClubID(),
		EnabledOnly: true,
	})
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var snap *model.LimitSnapshot
	if customer := h.session.CurrentCustomer(); customer != nil {
		h.snapshot.SetChild(customer.ID, h.session.ClubID())
		snap, err = h.snapshot.Get(r.Context())
		if err != nil {
			h.logger.Error("failed to load limit snapshot", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		v := productView{Product: p}
		if snap != nil {
			if entry, ok := snap.Entries[p.ID]; ok {
				e := entry
				v.Limit = &e
			}
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"products": views})
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	input.ClubID = h.session.ClubID()

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	input.ID = chi.URLParam(r, "id")
	input.ClubID = h.session.ClubID()

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		h.logger.Error("failed to update product", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.uc.SetProductEnabled(r.Context(), chi.URLParam(r, "id"), body.Enabled); err != nil {
		h.logger.Error("failed to toggle product", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
