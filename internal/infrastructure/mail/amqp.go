package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-system/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AMQPMailer hands messages to a mail relay consuming a RabbitMQ queue.
type AMQPMailer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *logrus.Logger
}

func NewAMQPMailer(cfg config.AMQPConfig, log *logrus.Logger) (*AMQPMailer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	log.Infof("Mail queue '%s' declared", q.Name)

	return &AMQPMailer{conn: conn, channel: ch, queue: q.Name, log: log}, nil
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = m.channel.PublishWithContext(
		publishCtx,
		"",      // default exchange
		m.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}

	m.log.WithField("recipients", len(msg.To)).Debug("Mail message published")
	return nil
}

func (m *AMQPMailer) Close() error {
	if m.channel != nil {
		if err := m.channel.Close(); err != nil {
			m.log.Warnf("Error closing RabbitMQ channel: %+v", err)
		}
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
