package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
	"github.com/d60-Lab/content-engine/internal/repository"
	"github.com/d60-Lab/content-engine/pkg/logger"
)

// normalized 事件经充实后的中间结果，create/update 两条路径共用
type normalized struct {
	postType      model.PostType
	typeDeclared  bool
	title         string
	authorID      *string
	private       bool
	origin        string
	allowed       []string
	merged        []string
	questions     []string
	tagsStr       string
	tagsProvided  bool
	canonicalURL  string
	metaChangedAt time.Time
}

// normalize 只读查询 + 纯计算，事务内执行
func (s *Reconciler) normalize(ctx context.Context, tx *gorm.DB, ev *ContentPublishedEvent) (*normalized, error) {
	extra := ev.Extra
	if extra == nil {
		extra = &PublishedExtra{}
	}
	n := &normalized{}

	n.postType = model.PostTypeArticle
	if ev.ContentType != "" {
		n.postType = model.PostType(ev.ContentType)
		n.typeDeclared = true
	}

	if handle := cleanHandle(extra.CreatorTwitter); handle != "" {
		id, err := repository.NewUserRepository(tx).FindIDByTwitter(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("resolve author: %w", err)
		}
		if id != "" {
			n.authorID = &id
		}
	}

	// 私密位查询失败降级为公开，只记错误日志不中断入库
	sources := repository.NewSourceRepository(tx)
	var private bool
	var err error
	switch {
	case ev.SourceID != "":
		private, err = sources.GetPrivacy(ctx, ev.SourceID)
	case ev.PostID != "":
		private, err = sources.GetPrivacyByPost(ctx, ev.PostID)
	}
	if err != nil {
		logger.Error("source privacy lookup failed",
			zap.String("source_id", ev.SourceID),
			zap.String("post_id", ev.PostID),
			zap.Error(err))
		private = false
	}
	n.private = private

	merger := s.newMerger(repository.NewKeywordRepository(tx))
	allowed, merged, err := merger.Merge(ctx, extra.Keywords)
	if err != nil {
		return nil, fmt.Errorf("merge keywords: %w", err)
	}
	if len(allowed) > s.keywordLimit {
		logger.Info("accepted keywords above limit",
			zap.String("url", ev.URL),
			zap.Int("count", len(allowed)))
	}
	n.allowed = allowed
	n.merged = merged
	n.tagsStr = strings.Join(allowed, ",")
	n.tagsProvided = extra.Keywords != nil
	n.questions = extra.Questions

	n.title = html.UnescapeString(ev.Title)
	n.canonicalURL = extra.CanonicalURL

	switch {
	case ev.SubmissionID != "":
		n.origin = model.OriginCommunityPicks
	case ev.Origin != "":
		n.origin = ev.Origin
	default:
		n.origin = model.OriginCrawler
	}

	switch {
	case ev.UpdatedAt != nil:
		n.metaChangedAt = *ev.UpdatedAt
	case ev.PublishedAt != nil:
		n.metaChangedAt = *ev.PublishedAt
	default:
		n.metaChangedAt = time.Now()
	}
	return n, nil
}

// cleanHandle 空串和占位 '@' 归一化为无作者
func cleanHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || handle == "@" {
		return ""
	}
	return handle
}
