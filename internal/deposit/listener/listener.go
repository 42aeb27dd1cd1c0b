package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/checkout"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/pkg/broker"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"go.uber.org/zap"
)

// retryDelay is the single grace period granted when a deposit event arrives
// for a user that can't be resolved yet. One retry, then the event is dropped.
const retryDelay = 2 * time.Second

type DepositListener struct {
	consumer *broker.KafkaConsumer
	checkout *checkout.Service
	sales    sales.UseCase
	logger   logger.ZapLogger
}

func NewDepositListener(consumer *broker.KafkaConsumer, co *checkout.Service, salesUC sales.UseCase, log logger.ZapLogger) *DepositListener {
	return &DepositListener{
		consumer: consumer,
		checkout: co,
		sales:    salesUC,
		logger:   log,
	}
}

func (l *DepositListener) Start(ctx context.Context) {
	l.logger.Info("Starting deposit Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping deposit Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type BalanceChangedEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   BalancePayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type BalancePayload struct {
	UserID     string  `json:"user_id"`
	Amount     float64 `json:"amount"`
	NewBalance float64 `json:"new_balance"`
	Source     string  `json:"source"`
}

func (l *DepositListener) processMessage(ctx context.Context, value []byte) {
	var event BalanceChangedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case "DepositRecorded", "BalanceAdjusted":
	default:
		return
	}

	l.logger.Info("Processing balance event",
		zap.String("event_type", event.EventType),
		zap.String("user_id", event.Payload.UserID),
	)

	if !l.apply(ctx, event) {
		// The push can beat the user's own record becoming visible here.
		// One retry after a fixed delay, then give up.
		time.Sleep(retryDelay)
		if !l.apply(ctx, event) {
			l.logger.Warn("Dropping balance event, user still unresolvable",
				zap.String("event_id", event.EventID),
				zap.String("user_id", event.Payload.UserID),
			)
		}
	}
}

func (l *DepositListener) apply(ctx context.Context, event BalanceChangedEvent) bool {
	customer, err := l.sales.GetCustomer(ctx, event.Payload.UserID)
	if err != nil {
		l.logger.Error("Failed to resolve user for balance event",
			zap.String("user_id", event.Payload.UserID), zap.Error(err))
		return false
	}
	if customer == nil {
		return false
	}

	source := event.Payload.Source
	if source == "" {
		source = model.BalanceSourceDeposit
	}

	l.checkout.ApplyExternalBalance(model.BalanceEvent{
		UserID:     customer.ID,
		NewBalance: event.Payload.NewBalance,
		Delta:      event.Payload.Amount,
		Source:     source,
	})
	return true
}
