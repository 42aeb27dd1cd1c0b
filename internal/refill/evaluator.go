package refill

import (
	"context"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
)

// Evaluator decides whether a child qualifies for a discounted repeat
// purchase of a product within its time window.
type Evaluator struct {
	sales sales.UseCase
	now   func() time.Time
}

func NewEvaluator(salesUC sales.UseCase) *Evaluator {
	return &Evaluator{sales: salesUC, now: time.Now}
}

func NewEvaluatorWithClock(salesUC sales.UseCase, now func() time.Time) *Evaluator {
	return &Evaluator{sales: salesUC, now: now}
}

// Eligibility scans today's sales for in-window purchases of the product.
// A time limit of 0 means the window is the rest of the local day; a max of
// 0 means unlimited refills inside the window. At least one in-window
// purchase is needed to seed eligibility.
func (e *Evaluator) Eligibility(ctx context.Context, childID string, product *model.Product, clubID string) (model.RefillEligibility, error) {
	result := model.RefillEligibility{}

	if product == nil || !product.RefillEnabled {
		return result, nil
	}

	now := e.now()
	var cutoff time.Time
	if product.RefillTimeLimitMinutes == 0 {
		cutoff, _ = sales.LocalDayRange(now)
	} else {
		cutoff = now.Add(-time.Duration(product.RefillTimeLimitMinutes) * time.Minute)
	}

	rows, err := e.sales.TodaysSalesForChild(ctx, childID, clubID)
	if err != nil {
		return result, err
	}

	for _, row := range rows {
		if row.CreatedAt.Before(cutoff) {
			continue
		}
		for _, item := range row.Items {
			if item.ProductID != product.ID {
				continue
			}
			result.PurchaseCount += item.Quantity
			if item.IsRefill {
				result.RefillsUsed += item.Quantity
			}
			if result.LastPurchase == nil || row.CreatedAt.After(*result.LastPurchase) {
				t := row.CreatedAt
				result.LastPurchase = &t
			}
		}
	}

	result.Eligible = result.PurchaseCount > 0 &&
		(product.RefillMaxRefills == 0 || result.RefillsUsed < product.RefillMaxRefills)

	return result, nil
}
