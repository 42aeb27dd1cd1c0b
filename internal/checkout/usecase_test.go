package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	catalogdto "github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/limits"
	limitsdto "github.com/flangoapp/flango-pos-service/internal/limits/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/order"
	"github.com/flangoapp/flango-pos-service/internal/policy"
	"github.com/flangoapp/flango-pos-service/internal/refill"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	salesdto "github.com/flangoapp/flango-pos-service/internal/sales/dto"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSales struct {
	sales.UseCase

	commitInput   *salesdto.CommitSaleInput
	commitSale    *model.Sale
	commitBalance float64
	commitErr     error

	undoSale    *model.Sale
	undoBalance float64
	undoErr     error

	invalidated int
}

func (f *fakeSales) TodaysSalesForChild(ctx context.Context, childID, clubID string) ([]model.SaleRow, error) {
	return nil, nil
}

func (f *fakeSales) CommitSale(ctx context.Context, input *salesdto.CommitSaleInput) (*model.Sale, float64, error) {
	f.commitInput = input
	if f.commitErr != nil {
		return nil, 0, f.commitErr
	}
	return f.commitSale, f.commitBalance, nil
}

func (f *fakeSales) UndoLastSale(ctx context.Context, childID, operatorID string) (*model.Sale, float64, error) {
	if f.undoErr != nil {
		return nil, 0, f.undoErr
	}
	return f.undoSale, f.undoBalance, nil
}

func (f *fakeSales) InvalidateTodaysSalesCache() {
	f.invalidated++
}

type fakeLimits struct {
	limits.UseCase

	decision limitsdto.Decision
}

func (f *fakeLimits) CanPurchase(ctx context.Context, in *limitsdto.CanPurchaseInput) (limitsdto.Decision, error) {
	return f.decision, nil
}

func (f *fakeLimits) SnapshotForChild(ctx context.Context, childID, clubID string) (*model.LimitSnapshot, error) {
	return &model.LimitSnapshot{ChildID: childID, ClubID: clubID, Entries: map[string]model.LimitSnapshotEntry{}}, nil
}

type fakeCatalog struct {
	catalog.UseCase
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filters *catalogdto.ProductFilters) ([]model.Product, error) {
	return nil, nil
}

type harness struct {
	svc    *Service
	sess   *session.Session
	cart   *order.Cart
	sales  *fakeSales
	limits *fakeLimits
	events []model.BalanceEvent
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	sess := session.New("club")
	salesUC := &fakeSales{
		commitSale:    &model.Sale{ID: "sale-1", Total: 30},
		commitBalance: 20,
	}
	limitsUC := &fakeLimits{decision: limitsdto.Decision{Allowed: true}}
	cat := &fakeCatalog{}

	snapshot := limits.NewSnapshotHolder(limitsUC, logger.NewNop(), 1)
	cart := order.NewCart(10)
	orderSvc := order.NewService(cart, sess, cat, snapshot, refill.NewEvaluator(salesUC), logger.NewNop())
	checker := policy.NewChecker(salesUC, cat)

	svc := NewService(sess, orderSvc, limitsUC, snapshot, checker, salesUC, nil, cfg, logger.NewNop())

	h := &harness{svc: svc, sess: sess, cart: cart, sales: salesUC, limits: limitsUC}
	svc.OnBalanceChange(func(ev model.BalanceEvent) {
		h.events = append(h.events, ev)
	})
	return h
}

func child(balance float64) *model.Customer {
	return &model.Customer{BaseModel: model.BaseModel{ID: "child"}, Name: "Alex", Balance: balance}
}

func cartLine(productID string, price float64) model.OrderLine {
	return model.OrderLine{ProductID: productID, Name: productID, Price: price}
}

func TestCheckoutGuards(t *testing.T) {
	t.Run("no customer selected", func(t *testing.T) {
		h := newHarness(t, Config{MaxOverdraft: -10})
		res, err := h.svc.Checkout(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, res.Status)
		assert.Equal(t, "Select a child before checking out.", res.Message)
	})

	t.Run("empty order", func(t *testing.T) {
		h := newHarness(t, Config{MaxOverdraft: -10})
		h.sess.SetCurrentCustomer(child(50))
		res, err := h.svc.Checkout(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, res.Status)
		assert.Equal(t, "The order is empty.", res.Message)
	})
}

func TestCheckoutSugarPolicyRejects(t *testing.T) {
	h := newHarness(t, Config{
		MaxOverdraft: -10,
		SugarPolicy:  &model.SugarPolicy{BlockUnhealthy: true},
	})
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(model.OrderLine{ProductID: "candy", Name: "Candy", Price: 5, Unhealthy: true})

	res, err := h.svc.Checkout(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, "Sugar policy: Candy cannot be bought today.", res.Message)
	assert.Equal(t, 1, h.cart.Len(), "rejection leaves the cart alone")
}

func TestCheckoutFinalLimitCheckRejects(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.limits.decision = limitsdto.Decision{Allowed: false, Message: "Club rule: no more than 1 of cocoa per day."}
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(cartLine("cocoa", 10))

	res, err := h.svc.Checkout(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, "Club rule: no more than 1 of cocoa per day.", res.Message)
	assert.Nil(t, h.sales.commitInput, "no commit after a limit rejection")
}

func TestCheckoutOverdraftGate(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(cartLine("cocoa", 61))

	res, err := h.svc.Checkout(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Status)
	require.NotNil(t, res.Evaluation)
	assert.True(t, res.Evaluation.OverdraftBreached)
	assert.Equal(t, "Balance would fall below the allowed minimum. Available until limit: 60.", res.Message)
}

func TestCheckoutConfirmFlow(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(cartLine("cocoa", 55))

	res, err := h.svc.Checkout(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmRequired, res.Status)
	assert.Equal(t, "This purchase takes the balance below zero.", res.Warning)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, -5.0, res.Evaluation.NewBalance)
	assert.Nil(t, h.sales.commitInput, "nothing committed before confirmation")
	assert.Equal(t, 1, h.cart.Len())
}

func TestCheckoutCommit(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.sess.SetCurrentCustomer(child(50))
	h.sess.SetCurrentSessionAdmin(&model.Admin{BaseModel: model.BaseModel{ID: "admin-1"}})
	h.cart.Push(cartLine("cocoa", 10))
	h.cart.Push(cartLine("cocoa", 10))
	h.cart.Push(cartLine("bun", 10))

	res, err := h.svc.Checkout(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, res.Status)
	require.NotNil(t, res.NewBalance)
	assert.Equal(t, 20.0, *res.NewBalance)

	// Cart cleared and child deselected for the next customer.
	assert.Equal(t, 0, h.cart.Len())
	assert.Nil(t, h.sess.CurrentCustomer())

	// Lines collapse into summary items on the wire.
	require.NotNil(t, h.sales.commitInput)
	require.Len(t, h.sales.commitInput.Items, 2)
	assert.Equal(t, 2, h.sales.commitInput.Items[0].Quantity)
	require.NotNil(t, h.sales.commitInput.OperatorID)
	assert.Equal(t, "admin-1", *h.sales.commitInput.OperatorID)

	assert.Positive(t, h.sales.invalidated, "daily cache must be dropped after a sale")

	require.Len(t, h.events, 1)
	assert.Equal(t, model.BalanceSourceSale, h.events[0].Source)
	assert.Equal(t, -30.0, h.events[0].Delta)
	assert.Equal(t, 20.0, h.events[0].NewBalance)
}

func TestCheckoutCommitFailureKeepsCart(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.sales.commitErr = errors.New("insufficient funds on ledger")
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(cartLine("cocoa", 10))

	res, err := h.svc.Checkout(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "insufficient funds on ledger", res.Message)

	assert.Equal(t, 1, h.cart.Len(), "failed commit leaves the order intact")
	assert.NotNil(t, h.sess.CurrentCustomer())
	assert.Empty(t, h.events)
}

func TestCheckoutOperatorFromContext(t *testing.T) {
	h := newHarness(t, Config{MaxOverdraft: -10})
	h.sess.SetCurrentCustomer(child(50))
	h.cart.Push(cartLine("cocoa", 10))

	ctx := session.WithOperatorID(context.Background(), "op-9")
	_, err := h.svc.Checkout(ctx, true)
	require.NoError(t, err)

	require.NotNil(t, h.sales.commitInput)
	require.NotNil(t, h.sales.commitInput.OperatorID)
	assert.Equal(t, "op-9", *h.sales.commitInput.OperatorID)
}

func TestUndoLastSale(t *testing.T) {
	t.Run("needs confirmation", func(t *testing.T) {
		h := newHarness(t, Config{})
		res, err := h.svc.UndoLastSale(context.Background(), "child", false)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmRequired, res.Status)
	})

	t.Run("nothing to undo", func(t *testing.T) {
		h := newHarness(t, Config{})
		h.sales.undoErr = sales.ErrNoSaleToUndo
		res, err := h.svc.UndoLastSale(context.Background(), "child", true)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, res.Status)
		assert.Equal(t, "There is no recent sale to undo.", res.Message)
	})

	t.Run("success refunds and emits", func(t *testing.T) {
		h := newHarness(t, Config{})
		h.sales.undoSale = &model.Sale{ID: "sale-1", Total: 12}
		h.sales.undoBalance = 62
		h.sess.SetCurrentCustomer(child(50))

		res, err := h.svc.UndoLastSale(context.Background(), "child", true)
		require.NoError(t, err)
		assert.Equal(t, StatusCommitted, res.Status)
		require.NotNil(t, res.NewBalance)
		assert.Equal(t, 62.0, *res.NewBalance)

		assert.Equal(t, 62.0, h.sess.CurrentCustomer().Balance, "mirror keeps the UI in sync")

		require.Len(t, h.events, 1)
		assert.Equal(t, model.BalanceSourceUndo, h.events[0].Source)
		assert.Equal(t, 12.0, h.events[0].Delta)
	})
}

func TestApplyExternalBalance(t *testing.T) {
	h := newHarness(t, Config{})
	h.sess.SetCurrentCustomer(child(50))

	h.svc.ApplyExternalBalance(model.BalanceEvent{
		UserID:     "child",
		NewBalance: 75,
		Delta:      25,
		Source:     model.BalanceSourceDeposit,
	})

	assert.Equal(t, 75.0, h.sess.CurrentCustomer().Balance)
	assert.Positive(t, h.sales.invalidated)
	require.Len(t, h.events, 1)
	assert.Equal(t, model.BalanceSourceDeposit, h.events[0].Source)
}
