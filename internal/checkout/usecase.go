package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/limits"
	limitsdto "github.com/flangoapp/flango-pos-service/internal/limits/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/order"
	"github.com/flangoapp/flango-pos-service/internal/policy"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	salesdto "github.com/flangoapp/flango-pos-service/internal/sales/dto"
	"github.com/flangoapp/flango-pos-service/internal/session"
	"github.com/flangoapp/flango-pos-service/pkg/cache"
	"github.com/flangoapp/flango-pos-service/pkg/i18n"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusConfirmRequired = "confirm_required"
	StatusCommitted       = "committed"
	StatusRejected        = "rejected"
	StatusFailed          = "failed"
)

type Config struct {
	// MaxOverdraft is the most negative balance a checkout may produce,
	// zero or negative (e.g. -10).
	MaxOverdraft float64
	SugarPolicy  *model.SugarPolicy
}

type Result struct {
	Status     string                    `json:"status"`
	Message    string                    `json:"message,omitempty"`
	Warning    string                    `json:"warning,omitempty"`
	Evaluation *model.PurchaseEvaluation `json:"evaluation,omitempty"`
	Sale       *model.Sale               `json:"sale,omitempty"`
	NewBalance *float64                  `json:"new_balance,omitempty"`
}

// Service sequences a checkout: guards, sugar policy, evaluation, overdraft
// gate, confirmation, commit. Linear, no retries, no client-side rollback —
// a failed commit leaves the cart untouched.
type Service struct {
	session  *session.Session
	orders   *order.Service
	limits   limits.UseCase
	snapshot *limits.SnapshotHolder
	policy   *policy.Checker
	sales    sales.UseCase
	redis    *cache.RedisClient
	cfg      Config
	logger   logger.ZapLogger

	mu        sync.Mutex
	listeners []func(model.BalanceEvent)
}

func NewService(
	sess *session.Session,
	orders *order.Service,
	limitsUC limits.UseCase,
	snapshot *limits.SnapshotHolder,
	checker *policy.Checker,
	salesUC sales.UseCase,
	redis *cache.RedisClient,
	cfg Config,
	log logger.ZapLogger,
) *Service {
	return &Service{
		session:  sess,
		orders:   orders,
		limits:   limitsUC,
		snapshot: snapshot,
		policy:   checker,
		sales:    salesUC,
		redis:    redis,
		cfg:      cfg,
		logger:   log,
	}
}

// OnBalanceChange registers a listener invoked after every locally applied
// balance mutation.
func (s *Service) OnBalanceChange(fn func(model.BalanceEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) emit(ev model.BalanceEvent) {
	s.mu.Lock()
	listeners := make([]func(model.BalanceEvent), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Evaluate recomputes the purchase evaluation for the current cart and
// customer. Derived, never stored.
func (s *Service) Evaluate() *model.PurchaseEvaluation {
	customer := s.session.CurrentCustomer()
	balance := 0.0
	if customer != nil {
		balance = customer.Balance
	}
	eval := order.Evaluate(order.EvaluateInput{
		Customer:       customer,
		CurrentBalance: balance,
		Lines:          s.orders.Cart().Lines(),
		MaxOverdraft:   s.cfg.MaxOverdraft,
	})
	return &eval
}

func (s *Service) Checkout(ctx context.Context, confirm bool) (*Result, error) {
	customer := s.session.CurrentCustomer()
	if customer == nil {
		return rejected(i18n.T("checkout.no_customer", nil)), nil
	}

	lines := s.orders.Cart().Lines()
	if len(lines) == 0 {
		return rejected(i18n.T("checkout.empty_order", nil)), nil
	}

	clubID := s.session.ClubID()

	violation, err := s.policy.Check(ctx, customer.ID, clubID, lines, s.cfg.SugarPolicy)
	if err != nil {
		return nil, err
	}
	if violation != nil {
		return rejected(violation.Message), nil
	}

	// Re-verify the whole order against the daily caps atomically; the cart
	// quantity is excluded so the order doesn't count against itself.
	seen := map[string]bool{}
	for _, line := range lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		decision, err := s.limits.CanPurchase(ctx, &limitsdto.CanPurchaseInput{
			ProductID:    line.ProductID,
			ChildID:      customer.ID,
			ClubID:       clubID,
			Cart:         lines,
			NameFallback: line.Name,
			FinalCheck:   true,
		})
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return rejected(decision.Message), nil
		}
	}

	eval := s.Evaluate()
	if eval.OverdraftBreached {
		res := rejected(i18n.T("checkout.overdraft", map[string]interface{}{
			"Available": eval.AvailableUntilLimit,
		}))
		res.Evaluation = eval
		return res, nil
	}

	warning := ""
	if eval.NewBalance < 0 {
		warning = i18n.T("checkout.negative_warning", nil)
	}

	if !confirm {
		return &Result{
			Status:     StatusConfirmRequired,
			Message:    i18n.T("checkout.confirm_required", nil),
			Warning:    warning,
			Evaluation: eval,
		}, nil
	}

	unlock, ok := s.lockChild(ctx, customer.ID)
	if !ok {
		return rejected(i18n.T("checkout.busy", nil)), nil
	}
	defer unlock()

	input := &salesdto.CommitSaleInput{
		ClubID:     clubID,
		CustomerID: customer.ID,
		Items:      commitItems(eval.ItemsSummary),
	}
	if admin := s.session.CurrentSessionAdmin(); admin != nil {
		id := admin.ID
		input.OperatorID = &id
	} else if op := session.OperatorID(ctx); op != "" {
		input.OperatorID = &op
	}

	sale, newBalance, err := s.sales.CommitSale(ctx, input)
	if err != nil {
		// Surfaced verbatim; the cart stays as it was, nothing to roll back.
		s.logger.Error("sale commit failed",
			zap.String("customer_id", customer.ID), zap.Error(err))
		return &Result{Status: StatusFailed, Message: err.Error(), Evaluation: eval, Warning: warning}, nil
	}

	s.session.MirrorBalance(customer.ID, newBalance)
	s.orders.Cart().Clear()
	s.session.ClearCurrentCustomer()
	s.snapshot.Invalidate()
	s.sales.InvalidateTodaysSalesCache()

	s.emit(model.BalanceEvent{
		UserID:     customer.ID,
		NewBalance: newBalance,
		Delta:      -eval.Total,
		Source:     model.BalanceSourceSale,
	})

	return &Result{
		Status:     StatusCommitted,
		Warning:    warning,
		Evaluation: eval,
		Sale:       sale,
		NewBalance: &newBalance,
	}, nil
}

// UndoLastSale reverses the child's most recent sale in one remote call; the
// ledger does the reversal math, not this client.
func (s *Service) UndoLastSale(ctx context.Context, childID string, confirm bool) (*Result, error) {
	if childID == "" {
		return rejected(i18n.T("checkout.no_customer", nil)), nil
	}
	if !confirm {
		return &Result{
			Status:  StatusConfirmRequired,
			Message: i18n.T("checkout.confirm_required", nil),
		}, nil
	}

	operatorID := session.OperatorID(ctx)
	sale, newBalance, err := s.sales.UndoLastSale(ctx, childID, operatorID)
	if err != nil {
		if errors.Is(err, sales.ErrNoSaleToUndo) {
			return rejected(i18n.T("checkout.undo_none", nil)), nil
		}
		return nil, err
	}

	s.session.MirrorBalance(childID, newBalance)
	s.snapshot.Invalidate()
	s.sales.InvalidateTodaysSalesCache()

	s.emit(model.BalanceEvent{
		UserID:     childID,
		NewBalance: newBalance,
		Delta:      sale.Total,
		Source:     model.BalanceSourceUndo,
	})

	return &Result{Status: StatusCommitted, Sale: sale, NewBalance: &newBalance}, nil
}

// ApplyExternalBalance mirrors a balance mutation that happened outside this
// terminal (deposit, admin edit) and fans it out to listeners.
func (s *Service) ApplyExternalBalance(ev model.BalanceEvent) {
	s.session.MirrorBalance(ev.UserID, ev.NewBalance)
	s.snapshot.Invalidate()
	s.sales.InvalidateTodaysSalesCache()
	s.emit(ev)
}

func (s *Service) lockChild(ctx context.Context, childID string) (func(), bool) {
	if s.redis == nil {
		return func() {}, true
	}
	lockKey := "lock:checkout:" + childID
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := s.redis.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			s.logger.Error("failed to acquire checkout lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, false
	}
	return func() {
		if err := s.redis.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			s.logger.Warn("failed to release checkout lock", zap.Error(err))
		}
	}, true
}

func rejected(message string) *Result {
	return &Result{Status: StatusRejected, Message: message}
}

func commitItems(summary []model.ItemSummary) []salesdto.CommitSaleItem {
	items := make([]salesdto.CommitSaleItem, 0, len(summary))
	for _, s := range summary {
		items = append(items, salesdto.CommitSaleItem{
			ProductID:   s.ProductID,
			ProductName: s.Name,
			Quantity:    s.Quantity,
			Price:       s.UnitPrice,
			IsRefill:    s.IsRefill,
		})
	}
	return items
}
