package refill

import (
	"context"
	"testing"
	"time"

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

func refillable(timeLimitMinutes, maxRefills int) *model.Product {
	return &model.Product{
		BaseModel:              model.BaseModel{ID: "cocoa"},
		Name:                   "Cocoa",
		RefillEnabled:          true,
		RefillTimeLimitMinutes: timeLimitMinutes,
		RefillMaxRefills:       maxRefills,
	}
}

func saleAt(at time.Time, items ...model.SaleItem) model.SaleRow {
	return model.SaleRow{CreatedAt: at, Items: items}
}

func TestEligibilityRequiresSeedPurchase(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local)
	e := NewEvaluatorWithClock(&fakeSales{}, func() time.Time { return now })

	result, err := e.Eligibility(context.Background(), "child", refillable(0, 0), "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Zero(t, result.PurchaseCount)
}

func TestEligibilityDisabledProduct(t *testing.T) {
	e := NewEvaluatorWithClock(&fakeSales{}, time.Now)

	p := refillable(0, 0)
	p.RefillEnabled = false
	result, err := e.Eligibility(context.Background(), "child", p, "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)

	result, err = e.Eligibility(context.Background(), "child", nil, "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
}

func TestEligibilityWholeDayWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local)
	morning := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)

	fake := &fakeSales{rows: []model.SaleRow{
		saleAt(morning, model.SaleItem{ProductID: "cocoa", Quantity: 1}),
	}}
	e := NewEvaluatorWithClock(fake, func() time.Time { return now })

	// Time limit 0: a purchase from this morning still seeds eligibility.
	result, err := e.Eligibility(context.Background(), "child", refillable(0, 0), "club")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Equal(t, 1, result.PurchaseCount)
	require.NotNil(t, result.LastPurchase)
	assert.Equal(t, morning, *result.LastPurchase)

	// Once the day rolls over, yesterday's purchase no longer counts.
	nextDay := time.Date(2024, 3, 2, 0, 30, 0, 0, time.Local)
	e = NewEvaluatorWithClock(fake, func() time.Time { return nextDay })
	result, err = e.Eligibility(context.Background(), "child", refillable(0, 0), "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
}

func TestEligibilityTimeWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local)

	fake := &fakeSales{rows: []model.SaleRow{
		saleAt(now.Add(-90*time.Minute), model.SaleItem{ProductID: "cocoa", Quantity: 1}),
	}}
	e := NewEvaluatorWithClock(fake, func() time.Time { return now })

	// 60-minute window: the purchase from 90 minutes ago has lapsed.
	result, err := e.Eligibility(context.Background(), "child", refillable(60, 0), "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)

	// 120-minute window still covers it.
	result, err = e.Eligibility(context.Background(), "child", refillable(120, 0), "club")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestEligibilityRefillCap(t *testing.T) {
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local)

	fake := &fakeSales{rows: []model.SaleRow{
		saleAt(now.Add(-30*time.Minute),
			model.SaleItem{ProductID: "cocoa", Quantity: 1},
			model.SaleItem{ProductID: "cocoa", Quantity: 1, IsRefill: true},
		),
	}}
	e := NewEvaluatorWithClock(fake, func() time.Time { return now })

	result, err := e.Eligibility(context.Background(), "child", refillable(0, 1), "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible, "cap of one refill is used up")
	assert.Equal(t, 1, result.RefillsUsed)
	assert.Equal(t, 2, result.PurchaseCount)

	// Max 0 means unlimited refills inside the window.
	result, err = e.Eligibility(context.Background(), "child", refillable(0, 0), "club")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestEligibilityIgnoresOtherProducts(t *testing.T) {
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local)

	fake := &fakeSales{rows: []model.SaleRow{
		saleAt(now.Add(-5*time.Minute), model.SaleItem{ProductID: "bun", Quantity: 3}),
	}}
	e := NewEvaluatorWithClock(fake, func() time.Time { return now })

	result, err := e.Eligibility(context.Background(), "child", refillable(0, 0), "club")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Zero(t, result.PurchaseCount)
}
