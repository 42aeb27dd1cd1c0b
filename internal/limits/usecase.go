package limits

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/limits/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
)

type UseCase interface {
	// CanPurchase decides whether one more unit of the product may be sold to
	// the child right now, given the cart. Read-only.
	CanPurchase(ctx context.Context, input *dto.CanPurchaseInput) (dto.Decision, error)

	// SnapshotForChild precomputes every product's effective cap, today's
	// quantity and refill configuration in one pass, for grid rendering.
	SnapshotForChild(ctx context.Context, childID, clubID string) (*model.LimitSnapshot, error)
}
