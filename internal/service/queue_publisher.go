package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/queue"
)

// Publisher announces finished runs.
type Publisher interface {
	PublishLoadCompleted(ctx context.Context, ev queue.LoadCompletedEvent) error
}

// AMQPPublisher publishes to RabbitMQ. It dials per message: runs are rare
// and a long-lived connection would only add reconnect handling.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// PublishLoadCompleted sends ev to the etl.load.completed queue as a
// persistent message. Errors are logged and returned so the caller can
// choose to ignore them.
func (p *AMQPPublisher) PublishLoadCompleted(ctx context.Context, ev queue.LoadCompletedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.LoadCompletedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.RunID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue.LoadCompletedQueue, false, false, pub); err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
