package usecase

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	catalogdto "github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	"github.com/flangoapp/flango-pos-service/internal/limits/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/pkg/i18n"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"go.uber.org/zap"
)

type Config struct {
	// FailOpenWithoutClub keeps the till usable when the club id is missing
	// from configuration: limit checks then allow instead of deny.
	FailOpenWithoutClub bool
}

type limitsUseCase struct {
	repo    limits.Repository
	catalog catalog.UseCase
	sales   sales.UseCase
	cfg     Config
	logger  logger.ZapLogger
}

func NewLimitsUseCase(repo limits.Repository, cat catalog.UseCase, salesUC sales.UseCase, cfg Config, log logger.ZapLogger) limits.UseCase {
	return &limitsUseCase{
		repo:    repo,
		catalog: cat,
		sales:   salesUC,
		cfg:     cfg,
		logger:  log,
	}
}

func deny(message string) dto.Decision {
	return dto.Decision{Allowed: false, Message: message}
}

var allowed = dto.Decision{Allowed: true}

func (uc *limitsUseCase) CanPurchase(ctx context.Context, in *dto.CanPurchaseInput) (dto.Decision, error) {
	if in.ProductID == "" || in.ChildID == "" {
		return deny(i18n.T("limits.unknown_product", map[string]interface{}{
			"Name": fallbackName(in.NameFallback),
		})), nil
	}

	if in.ClubID == "" {
		if uc.cfg.FailOpenWithoutClub {
			uc.logger.Warn("limit check without club id, failing open",
				zap.String("product_id", in.ProductID),
				zap.String("child_id", in.ChildID),
			)
			return allowed, nil
		}
		return deny(i18n.T("limits.unknown_product", map[string]interface{}{
			"Name": fallbackName(in.NameFallback),
		})), nil
	}

	product, err := uc.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return dto.Decision{}, err
	}
	if product == nil {
		return deny(i18n.T("limits.unknown_product", map[string]interface{}{
			"Name": fallbackName(in.NameFallback),
		})), nil
	}
	if !product.IsEnabled {
		return deny(i18n.T("limits.product_disabled", map[string]interface{}{
			"Name": product.Name,
		})), nil
	}

	parentMax, err := uc.repo.ParentLimit(ctx, in.ChildID, in.ProductID)
	if err != nil {
		return dto.Decision{}, err
	}
	clubMax, err := uc.repo.ClubLimit(ctx, in.ClubID, in.ProductID)
	if err != nil {
		return dto.Decision{}, err
	}

	// Parent override wins when present, explicit 0 included.
	effectiveMax := clubMax
	parentRule := false
	if parentMax != nil {
		effectiveMax = parentMax
		parentRule = true
	}
	if effectiveMax == nil && product.MaxPerDay != nil {
		effectiveMax = product.MaxPerDay
	}

	qtyInCart := 0
	if !in.FinalCheck {
		for _, line := range in.Cart {
			if line.ProductID == in.ProductID {
				qtyInCart++
			}
		}
	}

	quantities, err := uc.sales.TodaysQuantities(ctx, in.ChildID, in.ClubID)
	if err != nil {
		return dto.Decision{}, err
	}
	todaysQty := quantities[in.ProductID]

	if effectiveMax != nil {
		if *effectiveMax == 0 && parentRule {
			return deny(i18n.T("limits.parent_blocked", map[string]interface{}{
				"Name": product.Name,
			})), nil
		}
		if todaysQty+qtyInCart >= *effectiveMax {
			key := "limits.club_reached"
			if parentRule {
				key = "limits.parent_reached"
			}
			return deny(i18n.T(key, map[string]interface{}{
				"Name": product.Name,
				"Max":  *effectiveMax,
			})), nil
		}
	}

	customer, err := uc.sales.GetCustomer(ctx, in.ChildID)
	if err != nil {
		return dto.Decision{}, err
	}
	if customer != nil && customer.DailySpendLimit != nil {
		spend, err := uc.sales.TodaysSpend(ctx, in.ChildID, in.ClubID)
		if err != nil {
			return dto.Decision{}, err
		}
		if spend+product.Price > *customer.DailySpendLimit {
			return deny(i18n.T("limits.budget_reached", map[string]interface{}{
				"Limit": *customer.DailySpendLimit,
			})), nil
		}
	}

	return allowed, nil
}

func (uc *limitsUseCase) SnapshotForChild(ctx context.Context, childID, clubID string) (*model.LimitSnapshot, error) {
	products, err := uc.catalog.ListProducts(ctx, &catalogdto.ProductFilters{
		ClubID:      clubID,
		EnabledOnly: true,
	})
	if err != nil {
		return nil, err
	}

	parentLimits, err := uc.repo.ParentLimitsForChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	clubLimits, err := uc.repo.ClubLimits(ctx, clubID)
	if err != nil {
		return nil, err
	}

	quantities, err := uc.sales.TodaysQuantities(ctx, childID, clubID)
	if err != nil {
		return nil, err
	}
	spend, err := uc.sales.TodaysSpend(ctx, childID, clubID)
	if err != nil {
		return nil, err
	}

	snap := &model.LimitSnapshot{
		ChildID:     childID,
		ClubID:      clubID,
		Entries:     make(map[string]model.LimitSnapshotEntry, len(products)),
		TodaysSpend: spend,
	}

	for _, p := range products {
		entry := model.LimitSnapshotEntry{
			TodaysQty:              quantities[p.ID],
			RefillEnabled:          p.RefillEnabled,
			RefillPrice:            p.RefillPrice,
			RefillTimeLimitMinutes: p.RefillTimeLimitMinutes,
			RefillMaxRefills:       p.RefillMaxRefills,
		}

		if max, ok := parentLimits[p.ID]; ok {
			m := max
			entry.EffectiveMaxPerDay = &m
			entry.ParentRule = true
		} else if max, ok := clubLimits[p.ID]; ok {
			m := max
			entry.EffectiveMaxPerDay = &m
		} else if p.MaxPerDay != nil {
			m := *p.MaxPerDay
			entry.EffectiveMaxPerDay = &m
		}

		snap.Entries[p.ID] = entry
	}

	return snap, nil
}

func fallbackName(name string) string {
	if name == "" {
		return "This product"
	}
	return name
}
