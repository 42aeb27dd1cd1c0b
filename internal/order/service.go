package order

import (
	"context"
	"errors"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/refill"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/i18n"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"go.uber.org/zap"
)

// Service mutates the cart on behalf of the UI: it pre-checks the per-product
// cap against the memoized limit snapshot (no round-trip when the snapshot
// already shows the cap reached) and substitutes the refill price at add-time.
type Service struct {
	cart     *Cart
	session  *session.Session
	catalog  catalog.UseCase
	snapshot *limits.SnapshotHolder
	refill   *refill.Evaluator
	logger   logger.ZapLogger
}

func NewService(cart *Cart, sess *session.Session, cat catalog.UseCase, snap *limits.SnapshotHolder, ref *refill.Evaluator, log logger.ZapLogger) *Service {
	return &Service{
		cart:     cart,
		session:  sess,
		catalog:  cat,
		snapshot: snap,
		refill:   ref,
		logger:   log,
	}
}

func (s *Service) Cart() *Cart {
	return s.cart
}

func (s *Service) AddProduct(ctx context.Context, productID string) (AddResult, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return AddResult{}, err
	}
	if product == nil {
		return AddResult{}, errors.New("product not found")
	}

	customer := s.session.CurrentCustomer()

	if customer != nil {
		s.snapshot.SetChild(customer.ID, s.session.ClubID())
		snap, err := s.snapshot.Get(ctx)
		if err != nil {
			return AddResult{}, err
		}
		if snap != nil {
			if entry, ok := snap.Entries[product.ID]; ok && entry.EffectiveMaxPerDay != nil {
				if entry.TodaysQty+s.cart.CountProduct(product.ID) >= *entry.EffectiveMaxPerDay {
					key := "limits.club_reached"
					if entry.ParentRule {
						key = "limits.parent_reached"
					}
					if *entry.EffectiveMaxPerDay == 0 && entry.ParentRule {
						key = "limits.parent_blocked"
					}
					return AddResult{
						Success: false,
						Reason:  ReasonProductLimit,
						Message: i18n.T(key, map[string]interface{}{
							"Name": product.Name,
							"Max":  *entry.EffectiveMaxPerDay,
						}),
					}, nil
				}
			}
		}
	}

	line := lineFromProduct(product)

	if product.RefillEnabled && customer != nil {
		eligibility, err := s.refill.Eligibility(ctx, customer.ID, product, s.session.ClubID())
		if err != nil {
			// Refill is a discount, not a gate: sell at full price on error.
			s.logger.Warn("refill eligibility check failed, selling at full price",
				zap.String("product_id", product.ID), zap.Error(err))
		} else if eligibility.Eligible {
			price := 0.0
			if product.RefillPrice != nil {
				price = SafeNumber(*product.RefillPrice)
			}
			name := i18n.T("order.refill_name", map[string]interface{}{"Name": product.Name})
			line.EffectivePrice = &price
			line.EffectiveName = &name
			line.IsRefill = true
		}
	}

	result := s.cart.Push(line)
	if result.Success {
		s.snapshot.RequestRefresh(false)
	}
	return result, nil
}

// RemoveProduct removes by index (-1 = last). Removal can only loosen limits,
// so the follow-up UI pass is unlock-only.
func (s *Service) RemoveProduct(index int) *model.OrderLine {
	removed := s.cart.Remove(index)
	if removed != nil {
		s.snapshot.RequestRefresh(true)
	}
	return removed
}

func lineFromProduct(p *model.Product) model.OrderLine {
	return model.OrderLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     SafeNumber(p.Price),
		Emoji:     p.Emoji,
		Unhealthy: p.Unhealthy,
	}
}
