package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Deliverer is implemented by usecase.DeliveryUsecase.
type Deliverer interface {
	Deliver(ctx context.Context, buyerID int64) error
}

// Dispatcher is the single scheduling context that owns conversation state
// and the outbound Telegram channel. One goroutine drains buyer updates and
// queued deliveries; nothing else may touch the Machine or send messages.
type Dispatcher struct {
	machine    *Machine
	delivery   Deliverer
	updates    <-chan tgbotapi.Update
	deliveries chan int64
	logger     *zap.Logger
}

func NewDispatcher(
	machine *Machine,
	delivery Deliverer,
	updates <-chan tgbotapi.Update,
	queueSize int,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		machine:    machine,
		delivery:   delivery,
		updates:    updates,
		deliveries: make(chan int64, queueSize),
		logger:     logger,
	}
}

// ScheduleDelivery submits a delivery for buyerID into the dispatcher
// goroutine. Safe for concurrent use from any goroutine and never blocks;
// it returns false when the queue is full and the submission was dropped.
func (d *Dispatcher) ScheduleDelivery(buyerID int64) bool {
	select {
	case d.deliveries <- buyerID:
		return true
	default:
		return false
	}
}

// Run processes buyer actions and deliveries until ctx is cancelled or the
// updates channel closes. Delivery failures are logged and otherwise
// swallowed: they must never block or corrupt buyer conversations.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped", zap.Error(ctx.Err()))
			return
		case update, ok := <-d.updates:
			if !ok {
				d.logger.Info("updates channel closed, dispatcher stopping")
				return
			}
			d.machine.HandleUpdate(ctx, update)
		case buyerID := <-d.deliveries:
			if err := d.delivery.Deliver(ctx, buyerID); err != nil {
				d.logger.Error("delivery failed",
					zap.Int64("buyer_id", buyerID),
					zap.Error(err))
			}
		}
	}
}
