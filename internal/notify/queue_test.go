package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisQueueEnqueueAndGet(t *testing.T) {
	q, ctx := newTestQueue(t)

	n, err := q.Enqueue(ctx, Notification{
		PhoneNumber:     "+15551234567",
		CustomerName:    "alice",
		ContractorName:  "bob",
		IssueTitle:      "Leaky faucet",
		EnrichedIssueID: "enriched-1",
		QuotedPrice:     180,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if n.ID == "" || n.Status != StatusQueued || n.Kind != KindJobClaimed {
		t.Fatalf("unexpected queued notification %+v", n)
	}

	got, ok, err := q.Get(ctx, n.ID)
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if got.PhoneNumber != "+15551234567" || got.ContractorName != "bob" || got.QuotedPrice != 180 {
		t.Fatalf("payload did not round-trip: %+v", got)
	}
	if got.Status != StatusQueued || got.Attempts != 0 {
		t.Fatalf("unexpected status fields %+v", got)
	}

	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil || streamLen != 1 {
		t.Fatalf("expected one stream entry, got len=%d err=%v", streamLen, err)
	}
}

func TestRedisQueueEnqueueRequiresPhone(t *testing.T) {
	q, ctx := newTestQueue(t)

	if _, err := q.Enqueue(ctx, Notification{CustomerName: "alice"}); err == nil {
		t.Fatal("expected error for missing phone number")
	}
}

func TestRedisQueueHandleMessageSuccess(t *testing.T) {
	q, ctx := newTestQueue(t)
	msg, n := pendingMessage(t, q, ctx)

	var handled []Notification
	q.handleMessage(ctx, msg, func(_ context.Context, got Notification) error {
		handled = append(handled, got)
		return nil
	})

	if len(handled) != 1 || handled[0].ID != n.ID || handled[0].Attempts != 1 {
		t.Fatalf("unexpected handler input %+v", handled)
	}
	got, ok, err := q.Get(ctx, n.ID)
	if err != nil || !ok || got.Status != StatusDone {
		t.Fatalf("expected done status, got %+v %v %v", got, ok, err)
	}
	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil || streamLen != 0 {
		t.Fatalf("expected drained stream, got len=%d err=%v", streamLen, err)
	}
}

func TestRedisQueueHandleMessageRetriesThenFails(t *testing.T) {
	q, ctx := newTestQueue(t)
	msg, n := pendingMessage(t, q, ctx)

	handlerErr := errors.New("line busy")
	fail := func(context.Context, Notification) error { return handlerErr }

	// first failure requeues
	q.handleMessage(ctx, msg, fail)
	got, ok, err := q.Get(ctx, n.ID)
	if err != nil || !ok || got.Status != StatusQueued || got.Attempts != 1 {
		t.Fatalf("expected requeued after first failure, got %+v %v %v", got, ok, err)
	}
	if got.ErrorMessage != "line busy" {
		t.Fatalf("expected error recorded, got %q", got.ErrorMessage)
	}

	// second failure exhausts maxRetries
	msg = readPending(t, q, ctx)
	q.handleMessage(ctx, msg, fail)
	got, ok, err = q.Get(ctx, n.ID)
	if err != nil || !ok || got.Status != StatusFailed || got.Attempts != 2 {
		t.Fatalf("expected failed after retries, got %+v %v %v", got, ok, err)
	}
	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil || streamLen != 0 {
		t.Fatalf("expected drained stream, got len=%d err=%v", streamLen, err)
	}
}

func TestRedisQueueHandleMessageDropsMalformedPayload(t *testing.T) {
	q, ctx := newTestQueue(t)

	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{"notification_id": "bad", "payload": "{not json"},
	}).Err(); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	msg := readPending(t, q, ctx)

	q.handleMessage(ctx, msg, func(context.Context, Notification) error {
		t.Fatal("handler must not run for malformed payload")
		return nil
	})

	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil || streamLen != 0 {
		t.Fatalf("expected malformed entry dropped, got len=%d err=%v", streamLen, err)
	}
}

func newTestQueue(t *testing.T) (*RedisQueue, context.Context) {
	t.Helper()

	redisSrv := miniredis.RunT(t)
	q, err := NewRedisQueue(RedisQueueConfig{
		Addr:       redisSrv.Addr(),
		Stream:     "test:notifications",
		Group:      "test-group",
		Consumer:   "consumer-1",
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	ctx := context.Background()
	q.ensureGroup(ctx)
	return q, ctx
}

func pendingMessage(t *testing.T, q *RedisQueue, ctx context.Context) (redis.XMessage, Notification) {
	t.Helper()

	n, err := q.Enqueue(ctx, Notification{PhoneNumber: "+15551234567", IssueTitle: "Leaky faucet"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return readPending(t, q, ctx), n
}

func readPending(t *testing.T, q *RedisQueue, ctx context.Context) redis.XMessage {
	t.Helper()

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: "consumer-1",
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    0,
	}).Result()
	if err != nil {
		t.Fatalf("readgroup: %v", err)
	}
	if len(streams) != 1 || len(streams[0].Messages) != 1 {
		t.Fatalf("expected one pending message, got %+v", streams)
	}
	return streams[0].Messages[0]
}
