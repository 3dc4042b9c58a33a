package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seathive/seathive-server/internal/identity"
	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/queue"
)

// OutboxStore is the slice of the outbox repository the dispatcher needs.
type OutboxStore interface {
	ResetStuck(ctx context.Context, before time.Time) (int64, error)
	ClaimBatch(ctx context.Context, limit, maxRetries int) ([]model.OutboxMessage, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errMsg string, poison bool) error
}

// UserGetter resolves a recipient email when an event payload carries none.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*identity.User, error)
}

// DispatcherConfig bundles the dispatcher's tuning knobs.
type DispatcherConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	StuckAfter time.Duration
}

// Dispatcher drains the outbox to the broker.  Each tick first returns
// stuck claims to the pool, then claims a batch and publishes row by row.
// A failed publish advances the row's retry counter; once the counter
// reaches MaxRetries the row is poisoned and never claimed again.  The
// broker deduplicates on the message id, which equals the outbox row id,
// so a crash between publish and MarkProcessed only causes a redelivery.
type Dispatcher struct {
	outbox    OutboxStore
	publisher queue.Publisher
	users     UserGetter
	cfg       DispatcherConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher wires the outbox dispatcher.  users may be nil when no
// identity fallback is available; events without a recipient then fail and
// consume their retry budget.
func NewDispatcher(outbox OutboxStore, publisher queue.Publisher, users UserGetter, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		publisher: publisher,
		users:     users,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run drains the outbox on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	d.logger.Info("outbox dispatcher started",
		zap.Duration("interval", d.cfg.Interval),
		zap.Int("batch_size", d.cfg.BatchSize))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.Pass(ctx)
		}
	}
}

// Pass runs one dispatch cycle: reset stuck claims, claim a batch, publish.
func (d *Dispatcher) Pass(ctx context.Context) {
	reset, err := d.outbox.ResetStuck(ctx, d.now().UTC().Add(-d.cfg.StuckAfter))
	if err != nil {
		d.logger.Error("reset stuck outbox claims", zap.Error(err))
	} else if reset > 0 {
		d.logger.Warn("reset stuck outbox claims", zap.Int64("count", reset))
	}

	batch, err := d.outbox.ClaimBatch(ctx, d.cfg.BatchSize, d.cfg.MaxRetries)
	if err != nil {
		d.logger.Error("claim outbox batch", zap.Error(err))
		return
	}
	for i := range batch {
		d.dispatchOne(ctx, &batch[i])
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, m *model.OutboxMessage) {
	body, err := d.resolveBody(ctx, m)
	if err == nil {
		err = d.publisher.Publish(ctx, m.ID, body)
	}
	if err != nil {
		poison := m.RetryCount+1 >= d.cfg.MaxRetries
		if markErr := d.outbox.MarkFailed(ctx, m.ID, err.Error(), poison); markErr != nil {
			d.logger.Error("mark outbox message failed", zap.String("message_id", m.ID), zap.Error(markErr))
			return
		}
		if poison {
			d.logger.Error("outbox message poisoned",
				zap.String("message_id", m.ID),
				zap.String("event_type", m.EventType),
				zap.Int("retries", m.RetryCount+1),
				zap.Error(err))
		} else {
			d.logger.Warn("outbox publish failed, will retry",
				zap.String("message_id", m.ID), zap.Error(err))
		}
		return
	}
	if err := d.outbox.MarkProcessed(ctx, m.ID); err != nil {
		// The publish went out; the row stays claimed until the stuck reset
		// returns it and the consumer deduplicates the repeat.
		d.logger.Error("mark outbox message processed", zap.String("message_id", m.ID), zap.Error(err))
		return
	}
	d.logger.Debug("outbox message published", zap.String("message_id", m.ID))
}

// resolveBody returns the publishable payload.  Email events missing their
// recipient are completed through the identity service when a client is
// configured; anything else passes through untouched.
func (d *Dispatcher) resolveBody(ctx context.Context, m *model.OutboxMessage) ([]byte, error) {
	if m.EventType != model.EventTypeEmailNotification {
		return m.Payload, nil
	}
	var event queue.EmailNotificationEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	if event.RecipientEmail != "" || d.users == nil || event.RecipientID == "" {
		return m.Payload, nil
	}
	u, err := d.users.GetUser(ctx, event.RecipientID)
	if err != nil {
		return nil, err
	}
	event.RecipientEmail = u.Email
	return json.Marshal(event)
}
