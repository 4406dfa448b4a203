package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/events"
	"github.com/voltai/billing-service/internal/notify"
	"github.com/voltai/billing-service/internal/observability"
)

const (
	defaultQueueSize       = 256
	defaultDeliveryTimeout = 10 * time.Second
)

// NotificationService forwards customer events to external notifiers.
// Dispatcher handlers only enqueue; delivery happens on the Run goroutine so
// slow sinks never block an HTTP request.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifiers  []notify.Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	queue      chan events.Event
	timeout    time.Duration
}

// NotificationOptions configures queueing and delivery.
type NotificationOptions struct {
	QueueSize       int
	DeliveryTimeout time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifiers []notify.Notifier, logger *zap.Logger, metrics *observability.Metrics, opts NotificationOptions) *NotificationService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = defaultDeliveryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		notifiers:  notifiers,
		logger:     logger,
		metrics:    metrics,
		queue:      make(chan events.Event, opts.QueueSize),
		timeout:    opts.DeliveryTimeout,
	}
}

// RegisterHandlers subscribes to every customer event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllCustomerEvents {
		n.dispatcher.Subscribe(eventType, n.enqueue)
	}
}

func (n *NotificationService) enqueue(_ context.Context, event events.Event) error {
	n.logger.Info("customer event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("customer_id", event.CustomerID))

	if len(n.notifiers) == 0 {
		return nil
	}
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Run delivers queued events until ctx is cancelled.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-n.queue:
			n.deliver(ctx, event)
		}
	}
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event) {
	for _, notifier := range n.notifiers {
		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := notifier.Send(sendCtx, event)
		cancel()

		n.metrics.RecordNotification(notifier.Name(), err)
		if err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("notifier", notifier.Name()),
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}
		n.logger.Debug("notification delivered",
			zap.String("notifier", notifier.Name()),
			zap.String("event_type", string(event.Type)))
	}
}
