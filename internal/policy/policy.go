package policy

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	catalogdto "github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/pkg/i18n"
)

// Violation is a sugar-policy denial. Nil means the cart passes.
type Violation struct {
	Message string `json:"message"`
}

// Checker combines already-purchased unhealthy counts with the in-cart ones
// before each decision. First violation wins, nothing is partially allowed.
type Checker struct {
	sales   sales.UseCase
	catalog catalog.UseCase
}

func NewChecker(salesUC sales.UseCase, cat catalog.UseCase) *Checker {
	return &Checker{sales: salesUC, catalog: cat}
}

// Snapshot counts today's purchased unhealthy units for the child.
func (c *Checker) Snapshot(ctx context.Context, childID, clubID string) (model.UnhealthySnapshot, error) {
	snap := model.UnhealthySnapshot{PerProduct: map[string]int{}}

	unhealthy, err := c.unhealthyProducts(ctx, clubID)
	if err != nil {
		return snap, err
	}

	rows, err := c.sales.TodaysSalesForChild(ctx, childID, clubID)
	if err != nil {
		return snap, err
	}

	for _, row := range rows {
		for _, item := range row.Items {
			if !unhealthy[item.ProductID] {
				continue
			}
			snap.Total += item.Quantity
			snap.PerProduct[item.ProductID] += item.Quantity
		}
	}
	return snap, nil
}

func (c *Checker) Check(ctx context.Context, childID, clubID string, cart []model.OrderLine, policy *model.SugarPolicy) (*Violation, error) {
	if policy == nil {
		return nil, nil
	}

	cartTotal := 0
	cartPerProduct := map[string]int{}
	var firstUnhealthy *model.OrderLine
	for i, line := range cart {
		if !line.Unhealthy {
			continue
		}
		cartTotal++
		cartPerProduct[line.ProductID]++
		if firstUnhealthy == nil {
			firstUnhealthy = &cart[i]
		}
	}
	if cartTotal == 0 {
		return nil, nil
	}

	if policy.BlockUnhealthy {
		return &Violation{Message: i18n.T("policy.blocked", map[string]interface{}{
			"Name": firstUnhealthy.Name,
		})}, nil
	}

	snap, err := c.Snapshot(ctx, childID, clubID)
	if err != nil {
		return nil, err
	}

	if policy.MaxUnhealthyPerDay != nil && snap.Total+cartTotal > *policy.MaxUnhealthyPerDay {
		return &Violation{Message: i18n.T("policy.daily_total", map[string]interface{}{
			"Max": *policy.MaxUnhealthyPerDay,
		})}, nil
	}

	if policy.MaxUnhealthyPerProductPerDay != nil {
		// Walk the cart in order so the first offending line decides.
		for _, line := range cart {
			if !line.Unhealthy {
				continue
			}
			if snap.PerProduct[line.ProductID]+cartPerProduct[line.ProductID] > *policy.MaxUnhealthyPerProductPerDay {
				return &Violation{Message: i18n.T("policy.per_product", map[string]interface{}{
					"Name": line.Name,
					"Max":  *policy.MaxUnhealthyPerProductPerDay,
				})}, nil
			}
		}
	}

	return nil, nil
}

func (c *Checker) unhealthyProducts(ctx context.Context, clubID string) (map[string]bool, error) {
	products, err := c.catalog.ListProducts(ctx, &catalogdto.ProductFilters{ClubID: clubID})
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for _, p := range products {
		if p.Unhealthy {
			out[p.ID] = true
		}
	}
	return out, nil
}
