// Package notify delivers customer phone notifications through a Redis
// stream backed work queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyomfadia/contract-me/internal/util"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Kinds of notifications.
const (
	KindJobClaimed = "JOB_CLAIMED"
)

// Notification is one pending customer call.
type Notification struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	PhoneNumber     string     `json:"phoneNumber"`
	CustomerName    string     `json:"customerName,omitempty"`
	ContractorName  string     `json:"contractorName,omitempty"`
	IssueTitle      string     `json:"issueTitle,omitempty"`
	EnrichedIssueID string     `json:"enrichedIssueId,omitempty"`
	QuotedPrice     float64    `json:"quotedPrice,omitempty"`
	AppointmentAt   *time.Time `json:"appointmentAt,omitempty"`

	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RedisQueue is a consumer-group stream queue with retries. Failed
// deliveries are requeued up to MaxRetries before being marked failed;
// messages stranded by a dead consumer are reclaimed after ClaimIdle.
type RedisQueue struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	statusTTL    time.Duration
	maxRetries   int
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxLen       int64
	readCount    int64
	claimCount   int64
	once         sync.Once
}

type RedisQueueConfig struct {
	Addr       string
	Password   string
	Stream     string
	Group      string
	Consumer   string
	StatusTTL  time.Duration
	MaxRetries int
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxLen     int64
	ReadCount  int64
	ClaimCount int64
}

func NewRedisQueue(cfg RedisQueueConfig) (*RedisQueue, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "contractme:notifications"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "default"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = util.NewID()
	}
	statusTTL := cfg.StatusTTL
	if statusTTL <= 0 {
		statusTTL = 24 * time.Hour
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}
	claimCount := cfg.ClaimCount
	if claimCount <= 0 {
		claimCount = 10
	}

	return &RedisQueue{
		client:       redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		statusTTL:    statusTTL,
		maxRetries:   maxRetries,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxLen:       maxLen,
		readCount:    readCount,
		claimCount:   claimCount,
	}, nil
}

// Enqueue queues one notification for delivery and returns it with its
// assigned id and queued status.
func (q *RedisQueue) Enqueue(ctx context.Context, n Notification) (Notification, error) {
	if strings.TrimSpace(n.PhoneNumber) == "" {
		return Notification{}, errors.New("phoneNumber required")
	}
	if n.Kind == "" {
		n.Kind = KindJobClaimed
	}
	n.ID = util.NewID()
	n.Status = StatusQueued
	n.Attempts = 0
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt

	if err := q.writeStatus(ctx, n); err != nil {
		return Notification{}, err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return Notification{}, err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"notification_id": n.ID,
			"payload":         string(payload),
		},
	}).Err(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Get looks up a notification's delivery status.
func (q *RedisQueue) Get(ctx context.Context, id string) (Notification, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Notification{}, false, nil
	}
	data, err := q.client.HGetAll(ctx, q.statusKey(id)).Result()
	if err != nil {
		return Notification{}, false, err
	}
	if len(data) == 0 {
		return Notification{}, false, nil
	}
	n, err := decodeStatus(id, data)
	if err != nil {
		return Notification{}, false, err
	}
	return n, true, nil
}

// Start launches consumer goroutines that run until ctx is cancelled.
func (q *RedisQueue) Start(ctx context.Context, concurrency int, handler func(context.Context, Notification) error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", q.consumerBase, i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

func (q *RedisQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			// best-effort; errors will surface on consume
		}
	})
}

func (q *RedisQueue) consumeLoop(ctx context.Context, consumer string, handler func(context.Context, Notification) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := q.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				q.handleMessage(ctx, msg, handler)
			}
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.readCount,
			Block:    q.block,
		}).Result()
		if err != nil {
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.handleMessage(ctx, msg, handler)
			}
		}
	}
}

func (q *RedisQueue) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    q.claimCount,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *RedisQueue) handleMessage(ctx context.Context, msg redis.XMessage, handler func(context.Context, Notification) error) {
	id, _ := msg.Values["notification_id"].(string)
	payload, _ := msg.Values["payload"].(string)
	if id == "" || payload == "" {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	n.ID = id

	n, err := q.markProcessing(ctx, n)
	if err != nil {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	if err := handler(ctx, n); err == nil {
		_ = q.markDone(ctx, n.ID)
		q.ackAndDel(ctx, msg.ID)
		return
	} else if n.Attempts >= q.maxRetries {
		_ = q.markFailed(ctx, n.ID, err.Error())
		q.ackAndDel(ctx, msg.ID)
		return
	} else {
		_ = q.markQueued(ctx, n.ID, err.Error())
	}
	if q.retryDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.retryDelay):
		}
	}
	_ = q.requeueAndAck(ctx, msg.ID, n.ID, payload)
}

func (q *RedisQueue) ackAndDel(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func (q *RedisQueue) requeueAndAck(ctx context.Context, msgID, id, payload string) error {
	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"notification_id": id,
			"payload":         payload,
		},
	})
	pipe.XAck(ctx, q.stream, q.group, msgID)
	pipe.XDel(ctx, q.stream, msgID)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *RedisQueue) markProcessing(ctx context.Context, n Notification) (Notification, error) {
	stored, ok, err := q.Get(ctx, n.ID)
	if err != nil {
		return Notification{}, err
	}
	if ok {
		n.Attempts = stored.Attempts
	}
	n.Attempts++
	n.Status = StatusProcessing
	n.UpdatedAt = time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = n.UpdatedAt
	}
	if err := q.writeStatus(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (q *RedisQueue) markQueued(ctx context.Context, id, errMsg string) error {
	return q.setStatus(ctx, id, StatusQueued, errMsg)
}

func (q *RedisQueue) markDone(ctx context.Context, id string) error {
	return q.setStatus(ctx, id, StatusDone, "")
}

func (q *RedisQueue) markFailed(ctx context.Context, id, errMsg string) error {
	return q.setStatus(ctx, id, StatusFailed, errMsg)
}

func (q *RedisQueue) setStatus(ctx context.Context, id, status, errMsg string) error {
	n, _, err := q.Get(ctx, id)
	if err != nil {
		return err
	}
	n.ID = id
	n.Status = status
	n.ErrorMessage = errMsg
	n.UpdatedAt = time.Now().UTC()
	return q.writeStatus(ctx, n)
}

func (q *RedisQueue) writeStatus(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := q.statusKey(n.ID)
	fields := map[string]any{
		"status":    n.Status,
		"error":     n.ErrorMessage,
		"attempts":  strconv.Itoa(n.Attempts),
		"payload":   string(payload),
		"updatedAt": n.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := q.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	_ = q.client.Expire(ctx, key, q.statusTTL).Err()
	return nil
}

func (q *RedisQueue) statusKey(id string) string {
	return fmt.Sprintf("notification:%s:%s", q.stream, id)
}

func decodeStatus(id string, data map[string]string) (Notification, error) {
	var n Notification
	if payload := data["payload"]; payload != "" {
		if err := json.Unmarshal([]byte(payload), &n); err != nil {
			return Notification{}, err
		}
	}
	n.ID = id
	if v := data["status"]; v != "" {
		n.Status = v
	}
	n.ErrorMessage = data["error"]
	if v := data["attempts"]; v != "" {
		if attempts, err := strconv.Atoi(v); err == nil {
			n.Attempts = attempts
		}
	}
	if v := data["updatedAt"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			n.UpdatedAt = t
		}
	}
	return n, nil
}
