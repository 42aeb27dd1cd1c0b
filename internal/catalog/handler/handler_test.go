package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogUC struct {
	catalog.UseCase

	created *dto.CreateProductInput
	updated *dto.UpdateProductInput
}

func (f *fakeCatalogUC) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	f.created = input
	return &model.Product{BaseModel: model.BaseModel{ID: "p1"}, Name: input.Name}, nil
}

func (f *fakeCatalogUC) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	f.updated = input
	return &model.Product{BaseModel: model.BaseModel{ID: input.ID}, Name: input.Name}, nil
}

func newRouter(uc catalog.UseCase) chi.Router {
	sess := session.New("club")
	snapshot := limits.NewSnapshotHolder(nil, logger.NewNop(), time.Millisecond)
	h := NewCatalogHandler(uc, sess, snapshot, logger.NewNop())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestCreateProductDecodesSnakeCaseBody(t *testing.T) {
	uc := &fakeCatalogUC{}
	r := newRouter(uc)

	body := `{
		"name": "Cocoa",
		"emoji": "C",
		"price": 10,
		"max_per_day": 2,
		"unhealthy": true,
		"refill_enabled": true,
		"refill_price": 2.5,
		"refill_time_limit_minutes": 60,
		"refill_max_refills": 1,
		"sort_order": 3
	}`
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.created)
	assert.Equal(t, "Cocoa", uc.created.Name)
	require.NotNil(t, uc.created.MaxPerDay)
	assert.Equal(t, 2, *uc.created.MaxPerDay)
	assert.True(t, uc.created.Unhealthy)
	assert.True(t, uc.created.RefillEnabled)
	require.NotNil(t, uc.created.RefillPrice)
	assert.Equal(t, 2.5, *uc.created.RefillPrice)
	assert.Equal(t, 60, uc.created.RefillTimeLimitMinutes)
	assert.Equal(t, 1, uc.created.RefillMaxRefills)
	assert.Equal(t, 3, uc.created.SortOrder)
	assert.Equal(t, "club", uc.created.ClubID, "club comes from the session, not the body")
}

func TestUpdateProductDecodesSnakeCaseBody(t *testing.T) {
	uc := &fakeCatalogUC{}
	r := newRouter(uc)

	body := `{"name": "Bun", "price": 5, "max_per_day": 4, "is_enabled": true}`
	req := httptest.NewRequest(http.MethodPut, "/products/p1", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.updated)
	assert.Equal(t, "p1", uc.updated.ID, "id comes from the URL")
	require.NotNil(t, uc.updated.MaxPerDay)
	assert.Equal(t, 4, *uc.updated.MaxPerDay)
	assert.True(t, uc.updated.IsEnabled)
}
