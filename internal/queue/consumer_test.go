package queue

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/service"
)

type captureHandler struct {
	mu     sync.Mutex
	events []service.ContentPublishedEvent
}

func (h *captureHandler) Handle(_ context.Context, _ string, ev *service.ContentPublishedEvent) service.Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, *ev)
	return service.Outcome{Status: service.OutcomeApplied, PostID: "p1"}
}

func (h *captureHandler) snapshot() []service.ContentPublishedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]service.ContentPublishedEvent(nil), h.events...)
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		Stream:   "content-published",
		Group:    "content-engine",
		Consumer: "test-worker",
	}
}

func TestConsumerProcessesAndAcks(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := testIngestConfig()
	ctx := context.Background()

	pub := NewPublisher(rdb, cfg.Stream)
	_, err := pub.Publish(ctx, &service.ContentPublishedEvent{ID: "ext-1", URL: "http://x.com", Title: "A"})
	require.NoError(t, err)

	// 坏消息：非 JSON payload 也要被 ACK，不能卡死 pending
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: cfg.Stream,
		Values: map[string]any{payloadField: "{not json"},
	}).Err())

	h := &captureHandler{}
	c := NewConsumer(rdb, cfg, h)
	stop, err := c.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		_ = stop(stopCtx)
	}()

	require.Eventually(t, func() bool {
		return len(h.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	events := h.snapshot()
	assert.Equal(t, "ext-1", events[0].ID)
	assert.Equal(t, "http://x.com", events[0].URL)

	require.Eventually(t, func() bool {
		pending, err := rdb.XPending(context.Background(), cfg.Stream, cfg.Group).Result()
		return err == nil && pending.Count == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestPublisherPayloadRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ev := &service.ContentPublishedEvent{
		ID: "ext-1", PostID: "p1", URL: "http://x.com",
		UpdatedAt: &ts,
		Extra:     &service.PublishedExtra{Keywords: []string{"go"}},
	}
	id, err := NewPublisher(rdb, "content-published").Publish(ctx, ev)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs, err := rdb.XRange(ctx, "content-published", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got service.ContentPublishedEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values[payloadField].(string)), &got))
	assert.Equal(t, "ext-1", got.ID)
	assert.Equal(t, "p1", got.PostID)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(ts))
	require.NotNil(t, got.Extra)
	assert.Equal(t, []string{"go"}, got.Extra.Keywords)
}

func TestConsumerGroupIdempotentCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := testIngestConfig()

	c := NewConsumer(rdb, cfg, &captureHandler{})
	require.NoError(t, c.ensureGroup(context.Background()))
	// 二次建组返回 BUSYGROUP，应被吞掉
	require.NoError(t, c.ensureGroup(context.Background()))
}
