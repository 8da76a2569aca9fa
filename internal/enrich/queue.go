// Package enrich moves submitted issues through a RabbitMQ work queue to
// the AI analysis worker.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultQueueName = "contractme.enrichment"

// Task is the message body exchanged over the queue.
type Task struct {
	IssueID    string    `json:"issueId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Queue publishes and consumes enrichment tasks over AMQP. Messages are
// persistent and the queue durable, so submitted issues survive a broker
// restart.
type Queue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

type Config struct {
	URL   string
	Queue string
}

func New(cfg Config) (*Queue, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("amqp url required")
	}
	name := strings.TrimSpace(cfg.Queue)
	if name == "" {
		name = defaultQueueName
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}
	return &Queue{conn: conn, ch: ch, queue: name}, nil
}

// PublishEnrichment queues one issue for analysis.
func (q *Queue) PublishEnrichment(ctx context.Context, issueID string) error {
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return errors.New("issueId required")
	}
	body, err := json.Marshal(Task{IssueID: issueID, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume processes tasks until ctx is cancelled. A handler error leaves
// the message unacked for redelivery; a task that fails again on its
// redelivery is dropped, since the handler already reverted the issue for
// the sweep to retry later.
func (q *Queue) Consume(ctx context.Context, handler func(context.Context, Task) error) error {
	if err := q.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp deliveries closed")
			}
			q.handleDelivery(ctx, d, handler)
		}
	}
}

func (q *Queue) handleDelivery(ctx context.Context, d amqp.Delivery, handler func(context.Context, Task) error) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil || task.IssueID == "" {
		slog.Warn("discard malformed enrichment task", "error", err)
		_ = d.Ack(false)
		return
	}

	if err := handler(ctx, task); err != nil {
		slog.Warn("enrichment task failed", "issueId", task.IssueID, "redelivered", d.Redelivered, "error", err)
		if d.Redelivered {
			_ = d.Ack(false)
			return
		}
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close releases the channel and connection.
func (q *Queue) Close() error {
	var errs []error
	if err := q.ch.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := q.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
