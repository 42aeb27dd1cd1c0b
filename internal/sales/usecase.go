package sales

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales/dto"
)

type UseCase interface {
	// TodaysSalesForChild serves from the daily cache; one remote query per
	// miss, "today" being the local calendar day recomputed per call.
	TodaysSalesForChild(ctx context.Context, childID, clubID string) ([]model.SaleRow, error)

	// TodaysQuantities aggregates today's purchased units per product.
	TodaysQuantities(ctx context.Context, childID, clubID string) (map[string]int, error)

	// TodaysSpend aggregates today's total spend.
	TodaysSpend(ctx context.Context, childID, clubID string) (float64, error)

	CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, float64, error)
	UndoLastSale(ctx context.Context, childID, operatorID string) (*model.Sale, float64, error)
	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, int, error)

	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ApplyDeposit(ctx context.Context, input *dto.DepositInput) (float64, error)
	SetBalance(ctx context.Context, customerID string, balance float64) (float64, error)

	// InvalidateTodaysSalesCache drops the whole cache. Must be called after
	// any state-changing event so limit decisions never see stale counts.
	InvalidateTodaysSalesCache()
}
