package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/content-engine/internal/service"
)

// Publisher 往 content-published stream 投递事件（冒烟/回放用）
type Publisher struct {
	rdb    *redis.Client
	stream string
}

func NewPublisher(rdb *redis.Client, stream string) *Publisher {
	return &Publisher{rdb: rdb, stream: stream}
}

// Publish 返回 stream 内的消息 id
func (p *Publisher) Publish(ctx context.Context, ev *service.ContentPublishedEvent) (string, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{payloadField: string(payload)},
	}).Result()
}
