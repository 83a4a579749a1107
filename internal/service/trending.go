package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
	"github.com/d60-Lab/content-engine/pkg/logger"
)

const trendingKey = "trending:posts"

// 投票对热度分的加成系数
const upvoteWeight = 3

// TrendingJob 周期性重算可见帖子的热度分，并把榜单缓存进 redis
type TrendingJob struct {
	db       *gorm.DB
	cache    *redis.Client
	interval time.Duration
	pageSize int
	topN     int
}

func NewTrendingJob(db *gorm.DB, cache *redis.Client, interval time.Duration, topN int) *TrendingJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if topN <= 0 {
		topN = 100
	}
	return &TrendingJob{db: db, cache: cache, interval: interval, pageSize: 500, topN: topN}
}

// Start 启动定时循环；返回停止函数
func (j *TrendingJob) Start() func(context.Context) error {
	stop := make(chan struct{})
	go j.loop(stop)
	return func(ctx context.Context) error { close(stop); return nil }
}

func (j *TrendingJob) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := j.RunOnce(context.Background()); err != nil {
				logger.Error("trending recompute failed", zap.Error(err))
			}
		}
	}
}

// RunOnce 分页扫可见帖子重算分，单帖失败跳过不中断
func (j *TrendingJob) RunOnce(ctx context.Context) error {
	offset := 0
	for {
		var posts []*model.Post
		err := j.db.WithContext(ctx).
			Where("visible = ?", true).
			Order("created_at").
			Offset(offset).
			Limit(j.pageSize).
			Find(&posts).Error
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			break
		}
		for _, p := range posts {
			score := p.CreatedAt.UnixMilli()/60_000 + p.Upvotes*upvoteWeight
			if score == p.Score {
				continue
			}
			if err := j.db.WithContext(ctx).
				Model(&model.Post{}).
				Where("id = ?", p.ID).
				Update("score", score).Error; err != nil {
				logger.Error("score update failed", zap.String("post_id", p.ID), zap.Error(err))
			}
		}
		if len(posts) < j.pageSize {
			break
		}
		offset += j.pageSize
	}
	return j.refreshRanking(ctx)
}

func (j *TrendingJob) refreshRanking(ctx context.Context) error {
	if j.cache == nil {
		return nil
	}
	var ids []string
	err := j.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("visible = ? AND private = ?", true, false).
		Order("score DESC").
		Limit(j.topN).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	pipe := j.cache.Pipeline()
	pipe.Del(ctx, trendingKey)
	pipe.RPush(ctx, trendingKey, args...)
	pipe.Expire(ctx, trendingKey, 2*j.interval)
	_, err = pipe.Exec(ctx)
	return err
}

// Ranking 读取缓存榜单前 n 个帖子 id
func (j *TrendingJob) Ranking(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = j.topN
	}
	return j.cache.LRange(ctx, trendingKey, 0, int64(n-1)).Result()
}
