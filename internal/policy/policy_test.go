package policy

import (
	"context"
	"testing"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	catalogdto "github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSales struct {
	sales.UseCase

	rows []model.SaleRow
}

func (f *fakeSales) TodaysSalesForChild(ctx context.Context, childID, clubID string) ([]model.SaleRow, error) {
	return f.rows, nil
}

type fakeCatalog struct {
	catalog.UseCase

	products []model.Product
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filters *catalogdto.ProductFilters) ([]model.Product, error) {
	return f.products, nil
}

func intp(v int) *int { return &v }

func unhealthyLine(productID, name string) model.OrderLine {
	return model.OrderLine{ProductID: productID, Name: name, Unhealthy: true}
}

func newChecker(rows []model.SaleRow) *Checker {
	cat := &fakeCatalog{products: []model.Product{
		{BaseModel: model.BaseModel{ID: "candy"}, Name: "Candy", Unhealthy: true},
		{BaseModel: model.BaseModel{ID: "soda"}, Name: "Soda", Unhealthy: true},
		{BaseModel: model.BaseModel{ID: "apple"}, Name: "Apple"},
	}}
	return NewChecker(&fakeSales{rows: rows}, cat)
}

func TestCheckNilPolicy(t *testing.T) {
	c := newChecker(nil)
	v, err := c.Check(context.Background(), "child", "club", []model.OrderLine{unhealthyLine("candy", "Candy")}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCheckHealthyCartPasses(t *testing.T) {
	c := newChecker(nil)
	policy := &model.SugarPolicy{BlockUnhealthy: true}

	v, err := c.Check(context.Background(), "child", "club",
		[]model.OrderLine{{ProductID: "apple", Name: "Apple"}}, policy)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCheckBlockUnhealthy(t *testing.T) {
	c := newChecker(nil)
	policy := &model.SugarPolicy{BlockUnhealthy: true}

	v, err := c.Check(context.Background(), "child", "club", []model.OrderLine{
		{ProductID: "apple", Name: "Apple"},
		unhealthyLine("candy", "Candy"),
	}, policy)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Sugar policy: Candy cannot be bought today.", v.Message)
}

func TestCheckDailyTotal(t *testing.T) {
	rows := []model.SaleRow{{
		CreatedAt: time.Now(),
		Items:     []model.SaleItem{{ProductID: "candy", Quantity: 2}},
	}}
	c := newChecker(rows)
	policy := &model.SugarPolicy{MaxUnhealthyPerDay: intp(3)}

	// 2 bought today + 2 in the cart exceeds 3.
	v, err := c.Check(context.Background(), "child", "club", []model.OrderLine{
		unhealthyLine("candy", "Candy"),
		unhealthyLine("soda", "Soda"),
	}, policy)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Sugar policy: the daily limit of 3 unhealthy items is reached.", v.Message)

	// One unhealthy item still fits.
	v, err = c.Check(context.Background(), "child", "club",
		[]model.OrderLine{unhealthyLine("soda", "Soda")}, policy)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCheckPerProduct(t *testing.T) {
	rows := []model.SaleRow{{
		CreatedAt: time.Now(),
		Items:     []model.SaleItem{{ProductID: "soda", Quantity: 1}},
	}}
	c := newChecker(rows)
	policy := &model.SugarPolicy{MaxUnhealthyPerProductPerDay: intp(1)}

	// Cart order decides which line gets named: candy is still within its own
	// limit, soda is the offender.
	v, err := c.Check(context.Background(), "child", "club", []model.OrderLine{
		unhealthyLine("candy", "Candy"),
		unhealthyLine("soda", "Soda"),
	}, policy)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Sugar policy: the daily limit of 1 for Soda is reached.", v.Message)
}

func TestSnapshotCountsOnlyUnhealthy(t *testing.T) {
	rows := []model.SaleRow{{
		CreatedAt: time.Now(),
		Items: []model.SaleItem{
			{ProductID: "candy", Quantity: 2},
			{ProductID: "apple", Quantity: 5},
		},
	}}
	c := newChecker(rows)

	snap, err := c.Snapshot(context.Background(), "child", "club")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, snap.PerProduct["candy"])
	assert.NotContains(t, snap.PerProduct, "apple")
}
