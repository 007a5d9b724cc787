package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publish marshals the event and publishes it to the named durable queue.
// Publication happens after the surrounding database transaction commits,
// so a broker outage can only lose a notification, never a ledger write.
// Errors are logged and returned so callers can ignore them without
// interrupting the request flow.
func Publish(ctx context.Context, url, queueName string, event any) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		slog.Error("rabbitmq dial failed", "queue", queueName, "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Error("rabbitmq channel open failed", "queue", queueName, "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		slog.Error("rabbitmq queue declare failed", "queue", queueName, "err", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("rabbitmq marshal event failed", "queue", queueName, "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		slog.Error("rabbitmq publish failed", "queue", queueName, "err", err)
		return err
	}
	return nil
}
