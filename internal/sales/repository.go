package sales

import (
	"context"
	"errors"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales/dto"
)

// ErrNoSaleToUndo is returned when the child has no completed sale left.
var ErrNoSaleToUndo = errors.New("no completed sale to undo")

type Repository interface {
	// SalesForRange returns completed sales with items for one child within
	// [from, to), optionally filtered by club.
	SalesForRange(ctx context.Context, childID, clubID string, from, to time.Time) ([]model.SaleRow, error)

	// CommitSale writes the sale header, its items and the balance debit in
	// one transaction. Returns the stored sale and the resulting balance.
	CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, float64, error)

	// UndoLastSale reverses the most recent completed sale of the child. The
	// reversal math happens here, not in the caller.
	UndoLastSale(ctx context.Context, childID string, operatorID string) (*model.Sale, float64, error)

	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, int, error)

	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ApplyDeposit(ctx context.Context, customerID string, amount float64) (float64, error)
	SetBalance(ctx context.Context, customerID string, balance float64) (float64, error)
}
