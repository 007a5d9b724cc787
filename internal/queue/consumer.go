package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ, declares both settlement
// queues (durable) and consumes them, emitting one structured notification
// log line per event.  It runs a reconnect loop with exponential backoff
// and keeps running through broker restarts; processing errors reject the
// offending message without requeueing so a poison message cannot spin.
func StartNotificationConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("notification consumer dial failed", "err", err, "retry_in", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			slog.Warn("notification consumer loop ended", "err", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("notification consumer set QoS failed", "err", err)
	}

	for _, name := range []string{SettlementRequestedQueue, SettlementCompletedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	requested, err := ch.Consume(SettlementRequestedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", SettlementRequestedQueue, err)
	}
	completed, err := ch.Consume(SettlementCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", SettlementCompletedQueue, err)
	}

	for {
		select {
		case d, ok := <-requested:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleRequested(d.Body))
		case d, ok := <-completed:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleCompleted(d.Body))
		}
	}
}

func ackOrReject(d amqp.Delivery, err error) {
	if err != nil {
		slog.Error("notification consumer handle failed", "queue", d.RoutingKey, "err", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func handleRequested(body []byte) error {
	var ev SettlementRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	for _, debtorID := range ev.DebtorIDs {
		slog.Info("settlement payment requested",
			"settlement_id", ev.SettlementID,
			"schedule", ev.ScheduleTitle,
			"user_id", debtorID,
			"amount", ev.AmountEach)
	}
	return nil
}

func handleCompleted(body []byte) error {
	var ev SettlementCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	slog.Info("settlement completed",
		"settlement_id", ev.SettlementID,
		"schedule", ev.ScheduleTitle,
		"receiver_id", ev.ReceiverID,
		"total_amount", ev.TotalAmount)
	return nil
}
