package orderevents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nilecommerce/admin-service/pkg/db/models"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
	"github.com/nilecommerce/admin-service/pkg/metrics"
)

const (
	statusSuccess = "SUCCESS"
	consumerTag   = "admin-service-order-events"
)

// OrderEvent is the order-lifecycle payload published by the order service.
type OrderEvent struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// dashboardRecorder is the slice of the dashboard service the consumer needs.
type dashboardRecorder interface {
	RecordMetric(ctx context.Context, metricType string, at time.Time, delta float64) error
	RecordFailureReason(ctx context.Context, reason string, at time.Time, delta float64) error
}

// deliverySource opens a manually-acked delivery stream.
type deliverySource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Consumer pulls order-lifecycle events off the queue one at a time and
// folds them into the dashboard counters. A message is acked only after
// the counters are written; failures leave it to the broker's redelivery
// policy, except for payloads that can never be processed.
type Consumer struct {
	source  deliverySource
	dash    dashboardRecorder
	queue   string
	logger  *logger.Logger
	metrics *metrics.ConsumerMetrics
}

// New wires a queue client and the dashboard service into a consumer.
func New(source deliverySource, dash dashboardRecorder, queue string, logg *logger.Logger, m *metrics.ConsumerMetrics) (*Consumer, error) {
	if source == nil {
		return nil, fmt.Errorf("delivery source is required")
	}
	if dash == nil {
		return nil, fmt.Errorf("dashboard recorder is required")
	}
	if queue == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Consumer{source: source, dash: dash, queue: queue, logger: logg, metrics: m}, nil
}

// Run consumes deliveries until the context is cancelled or the delivery
// channel closes (broker connection lost).
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.source.Consume(consumerTag)
	if err != nil {
		return fmt.Errorf("open consumer: %w", err)
	}

	c.logger.Info(c.logger.WithField(ctx, "queue", c.queue), "order event consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", c.queue)
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	start := time.Now()

	if err := c.process(ctx, delivery.Body); err != nil {
		c.metrics.IncFailed(c.queue)
		c.logger.Error(c.logger.WithField(ctx, "queue", c.queue), "order event processing failed", err)

		// A payload that fails validation will never succeed; drop it
		// instead of cycling it through redelivery forever.
		requeue := pkgerrors.As(err).Code() != pkgerrors.CodeValidation
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			c.logger.Error(ctx, "nack failed", nackErr)
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Error(ctx, "ack failed", err)
		return
	}
	c.metrics.IncProcessed(c.queue)
	c.metrics.ObserveDuration(c.queue, time.Since(start))
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed order event payload")
	}
	if event.Status == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order event status is required")
	}
	if event.CreatedAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order event createdAt is required")
	}

	if strings.EqualFold(event.Status, statusSuccess) {
		return c.dash.RecordMetric(ctx, models.MetricOrders, event.CreatedAt, 1)
	}

	if err := c.dash.RecordMetric(ctx, models.MetricFailedOrders, event.CreatedAt, 1); err != nil {
		return err
	}
	if event.Reason != "" {
		return c.dash.RecordFailureReason(ctx, event.Reason, event.CreatedAt, 1)
	}
	return nil
}
