package messaging

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"cafeteria/internal/config"
	"cafeteria/internal/logger"
)

const (
	OrdersExchange        = "cafeteria_orders"
	NotificationsExchange = "cafeteria_notifications"
	NotificationsQueue    = "cafeteria_notifications_queue"
	OrderEventsQueue      = "cafeteria_order_events_queue"

	maxConnectAttempts = 5
)

// Connection wraps a RabbitMQ connection with reconnection logic
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
}

// New dials RabbitMQ and declares the cafeteria exchanges and queues
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		logger: log,
		url:    cfg.RabbitMQURL(),
	}
	if err := conn.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return conn, nil
}

func (c *Connection) connect() error {
	var err error
	for i := 0; i < maxConnectAttempts; i++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if setupErr := c.setupTopology(); setupErr != nil {
					c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", setupErr, nil)
					c.close()
					err = setupErr
				} else {
					return nil
				}
			} else {
				c.conn.Close()
			}
		}

		if i < maxConnectAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
				"startup", err, nil)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxConnectAttempts, err)
}

// setupTopology declares both fanout exchanges and binds one durable queue
// to each
func (c *Connection) setupTopology() error {
	bindings := []struct {
		exchange string
		queue    string
		args     amqp091.Table
	}{
		// order events are audit data, kept a day
		{OrdersExchange, OrderEventsQueue, amqp091.Table{"x-message-ttl": int32(24 * time.Hour / time.Millisecond)}},
		{NotificationsExchange, NotificationsQueue, nil},
	}

	for _, b := range bindings {
		err := c.channel.ExchangeDeclare(
			b.exchange, // name
			"fanout",   // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s exchange: %w", b.exchange, err)
		}

		_, err = c.channel.QueueDeclare(
			b.queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			b.args,  // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		err = c.channel.QueueBind(
			b.queue,    // queue name
			"",         // routing key (ignored for fanout)
			b.exchange, // exchange
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}
