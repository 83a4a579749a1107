package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/queue"
	"github.com/d60-Lab/content-engine/internal/service"
)

// 从标准输入读一条 JSON 事件并投递到 content-published stream
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		panic(err)
	}
	var ev service.ContentPublishedEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		fmt.Fprintln(os.Stderr, "invalid event payload:", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	id, err := queue.NewPublisher(rdb, cfg.Ingest.Stream).Publish(context.Background(), &ev)
	if err != nil {
		panic(err)
	}
	fmt.Println("published:", id)
}
