package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	"github.com/flangoapp/flango-pos-service/internal/checkout"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/order"
	"github.com/flangoapp/flango-pos-service/internal/refill"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	catalog.UseCase

	products map[string]*model.Product
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return f.products[id], nil
}

type fakeSales struct {
	sales.UseCase
}

func (f *fakeSales) TodaysSalesForChild(ctx context.Context, childID, clubID string) ([]model.SaleRow, error) {
	return nil, nil
}

func (f *fakeSales) InvalidateTodaysSalesCache() {}

type fakeLimits struct {
	limits.UseCase
}

func (f *fakeLimits) SnapshotForChild(ctx context.Context, childID, clubID string) (*model.LimitSnapshot, error) {
	return &model.LimitSnapshot{Entries: map[string]model.LimitSnapshotEntry{}}, nil
}

func cartRouter(t *testing.T, products ...*model.Product) (chi.Router, *order.Service) {
	t.Helper()

	byID := map[string]*model.Product{}
	for _, p := range products {
		byID[p.ID] = p
	}

	sess := session.New("club")
	snapshot := limits.NewSnapshotHolder(&fakeLimits{}, logger.NewNop(), 1)
	salesUC := &fakeSales{}
	orders := order.NewService(order.NewCart(10), sess, &fakeCatalog{products: byID}, snapshot, refill.NewEvaluator(salesUC), logger.NewNop())
	co := checkout.NewService(sess, orders, &fakeLimits{}, snapshot, nil, salesUC, nil, checkout.Config{}, logger.NewNop())

	h := NewCheckoutHandler(co, orders, salesUC, sess, snapshot, logger.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, orders
}

func addItem(t *testing.T, r chi.Router, productID string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(`{"product_id": "`+productID+`"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func product(id string, price float64) *model.Product {
	return &model.Product{BaseModel: model.BaseModel{ID: id}, Name: id, Price: price, IsEnabled: true}
}

func TestRemoveItemByPathIndex(t *testing.T) {
	r, orders := cartRouter(t, product("cocoa", 10), product("bun", 5), product("soda", 8))
	addItem(t, r, "cocoa")
	addItem(t, r, "bun")
	addItem(t, r, "soda")

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := orders.Cart().Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "cocoa", lines[0].ProductID)
	assert.Equal(t, "soda", lines[1].ProductID)
}

func TestRemoveItemDefaultsToLastLine(t *testing.T) {
	r, orders := cartRouter(t, product("cocoa", 10), product("bun", 5))
	addItem(t, r, "cocoa")
	addItem(t, r, "bun")

	req := httptest.NewRequest(http.MethodDelete, "/cart/items", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := orders.Cart().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "cocoa", lines[0].ProductID)
}

func TestRemoveItemRejectsBadIndex(t *testing.T) {
	r, _ := cartRouter(t, product("cocoa", 10))
	addItem(t, r, "cocoa")

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItemEmptyCart(t *testing.T) {
	r, _ := cartRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
