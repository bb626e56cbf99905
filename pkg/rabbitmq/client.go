package rabbitmq

import (
	"context"
	"errors"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

var (
	errURLRequired    = errors.New("rabbitmq url is required")
	errQueueRequired  = errors.New("rabbitmq queue name is required")
	errLoggerRequired = errors.New("rabbitmq logger is required")
)

// Client owns a connection and channel bound to a direct exchange. The
// topology (exchange, queue, binding) is declared up front so consumers and
// publishers agree on it regardless of start order.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     config.RabbitMQConfig
	logger  *logger.Logger
}

// New dials the broker and declares the exchange, queue, and binding.
func New(ctx context.Context, cfg config.RabbitMQConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errURLRequired
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errQueueRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	client := &Client{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  logg,
	}

	if err := client.declareTopology(); err != nil {
		client.Close()
		return nil, err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"exchange":    cfg.Exchange,
		"queue":       cfg.Queue,
		"routing_key": cfg.RoutingKey,
	}), "rabbitmq topology ready")

	return client, nil
}

func (c *Client) declareTopology() error {
	if err := c.channel.ExchangeDeclare(
		c.cfg.Exchange,
		"direct",
		c.cfg.Durable,
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := c.channel.QueueDeclare(
		c.cfg.Queue,
		c.cfg.Durable,
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return c.channel.QueueBind(c.cfg.Queue, c.cfg.RoutingKey, c.cfg.Exchange, false, nil)
}

// Consume opens a manually-acked delivery stream with prefetch 1, so a slow
// handler never accumulates unacked messages.
func (c *Client) Consume(consumerTag string) (<-chan amqp.Delivery, error) {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return nil, err
	}
	return c.channel.Consume(
		c.cfg.Queue,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
}

// Publish sends a persistent JSON message through the exchange with the
// configured routing key. Used by tooling and integration tests.
func (c *Client) Publish(ctx context.Context, body []byte) error {
	return c.channel.PublishWithContext(
		ctx,
		c.cfg.Exchange,
		c.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// NotifyClose relays connection-level close events.
func (c *Client) NotifyClose() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

// Close shuts down the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
