package queue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/service"
	"github.com/d60-Lab/content-engine/pkg/logger"
)

// payloadField stream 消息里装 JSON 事件体的字段名
const payloadField = "payload"

// Handler content-published 事件处理方，约定永远正常返回
type Handler interface {
	Handle(ctx context.Context, messageID string, ev *service.ContentPublishedEvent) service.Outcome
}

// Consumer redis stream 消费组消费者
// at-least-once：处理完无条件 ACK，重投由外部传输层决定
type Consumer struct {
	rdb      *redis.Client
	stream   string
	group    string
	consumer string
	handler  Handler
	block    time.Duration
	count    int64
}

func NewConsumer(rdb *redis.Client, cfg config.IngestConfig, handler Handler) *Consumer {
	consumer := cfg.Consumer
	if consumer == "" {
		consumer = "worker-1"
	}
	return &Consumer{
		rdb:      rdb,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: consumer,
		handler:  handler,
		block:    5 * time.Second,
		count:    16,
	}
}

// Start 建消费组并启动拉取循环；返回停止函数
func (c *Consumer) Start(ctx context.Context) (func(context.Context) error, error) {
	if err := c.ensureGroup(ctx); err != nil {
		return nil, err
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.loop(stop)
	}()
	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}, nil
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) loop(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		ctx := context.Background()
		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    c.count,
			Block:    c.block,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			logger.Error("stream read failed", zap.String("stream", c.stream), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		for _, s := range streams {
			for _, msg := range s.Messages {
				c.processMessage(ctx, msg)
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage) {
	// 处理完无条件 ACK，哪怕是坏消息也不留在 pending 里
	defer func() {
		if err := c.rdb.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
			logger.Error("stream ack failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}()

	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		logger.Error("stream message without payload", zap.String("message_id", msg.ID))
		return
	}
	var ev service.ContentPublishedEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		logger.Error("malformed content-published payload",
			zap.String("message_id", msg.ID),
			zap.String("payload", raw),
			zap.Error(err))
		return
	}
	out := c.handler.Handle(ctx, msg.ID, &ev)
	if out.Status == service.OutcomeSkipped {
		logger.Info("content-published skipped",
			zap.String("message_id", msg.ID),
			zap.String("event_id", ev.ID),
			zap.String("reason", out.Reason))
	}
}
