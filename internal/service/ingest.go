package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/model"
	"github.com/d60-Lab/content-engine/internal/repository"
	"github.com/d60-Lab/content-engine/pkg/logger"
	"github.com/d60-Lab/content-engine/pkg/shortid"
)

// typePolicy 子类型差异是数据不是行为：白名单为 nil 表示全字段可写
type typePolicy struct {
	allowedColumns map[string]bool
}

// 始终保留的列，白名单裁剪时不剔除
var alwaysKeptColumns = map[string]bool{
	"id":          true,
	"external_id": true,
	"visible":     true,
	"visible_at":  true,
	"flags":       true,
}

var postTypePolicies = map[model.PostType]typePolicy{
	model.PostTypeArticle: {},
	model.PostTypeShare:   {},
	model.PostTypeWelcome: {},
	model.PostTypeFreeform: {allowedColumns: map[string]bool{
		"title":               true,
		"image":               true,
		"tags_str":            true,
		"private":             true,
		"source_id":           true,
		"metadata_changed_at": true,
	}},
}

func filterColumns(t model.PostType, cols []string) []string {
	p, ok := postTypePolicies[t]
	if !ok || p.allowedColumns == nil {
		return cols
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if p.allowedColumns[c] || alwaysKeptColumns[c] {
			out = append(out, c)
		}
	}
	return out
}

// Reconciler content-published 事件的入库调停器
// 单事件单事务：提交/更新/索引维护要么全部落地要么全部回滚
type Reconciler struct {
	db           *gorm.DB
	ids          shortid.Generator
	banned       map[string]struct{}
	keywordLimit int
	newMerger    func(repository.KeywordRepository) KeywordMerger
	tracer       trace.Tracer
}

func NewReconciler(db *gorm.DB, ids shortid.Generator, cfg config.IngestConfig) *Reconciler {
	banned := make(map[string]struct{}, len(cfg.BannedAuthors))
	for _, h := range cfg.BannedAuthors {
		banned[strings.ToLower(strings.TrimPrefix(h, "@"))] = struct{}{}
	}
	limit := cfg.KeywordLimit
	if limit <= 0 {
		limit = 5
	}
	return &Reconciler{
		db:           db,
		ids:          ids,
		banned:       banned,
		keywordLimit: limit,
		newMerger:    NewVocabularyMerger,
		tracer:       otel.Tracer("content-engine/ingest"),
	}
}

// Handle 永远正常返回：失败只进日志与 sentry，由外层传输决定是否重投
func (s *Reconciler) Handle(ctx context.Context, messageID string, ev *ContentPublishedEvent) Outcome {
	ctx, span := s.tracer.Start(ctx, "content-published")
	defer span.End()

	out, err := s.process(ctx, ev)
	if err != nil {
		logger.Error("content-published handling failed",
			zap.String("message_id", messageID),
			zap.String("event_id", ev.ID),
			zap.String("post_id", ev.PostID),
			zap.String("url", ev.URL),
			zap.Error(err))
		sentry.CaptureException(err)
		return Outcome{Status: OutcomeFailed, Reason: err.Error()}
	}
	return out
}

func (s *Reconciler) process(ctx context.Context, ev *ContentPublishedEvent) (Outcome, error) {
	if ev.RejectReason != "" {
		return s.rejectSubmission(ctx, ev)
	}
	if s.isBannedAuthor(ev) {
		logger.Info("discarding content from banned author",
			zap.String("event_id", ev.ID),
			zap.String("url", ev.URL))
		return Outcome{Status: OutcomeSkipped, Reason: SkipBannedAuthor}, nil
	}

	var out Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.normalize(ctx, tx, ev)
		if err != nil {
			return err
		}
		if ev.PostID == "" {
			out, err = s.createPost(ctx, tx, ev, n)
		} else {
			out, err = s.updatePost(ctx, tx, ev, n)
		}
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// rejectSubmission 驳回路径不开主事务，至多一次小写入
func (s *Reconciler) rejectSubmission(ctx context.Context, ev *ContentPublishedEvent) (Outcome, error) {
	if ev.SubmissionID == "" {
		logger.Info("rejection event without submission id", zap.String("event_id", ev.ID))
		return Outcome{Status: OutcomeSkipped, Reason: SkipMissingSubmission}, nil
	}
	subs := repository.NewSubmissionRepository(s.db)
	sub, err := subs.GetByID(ctx, ev.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("submission not found for rejection",
				zap.String("submission_id", ev.SubmissionID))
			return Outcome{Status: OutcomeSkipped, Reason: SkipMissingSubmission}, nil
		}
		return Outcome{}, err
	}
	// 终态不回退
	if sub.Status != model.SubmissionStatusStarted {
		return Outcome{Status: OutcomeSkipped, Reason: SkipSubmissionFinalized}, nil
	}
	reason := NormalizeRejectReason(ev.RejectReason)
	if err := subs.UpdateStatus(ctx, sub.ID, model.SubmissionStatusRejected, reason); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: OutcomeRejectedSubmission, Reason: reason}, nil
}

func (s *Reconciler) isBannedAuthor(ev *ContentPublishedEvent) bool {
	if ev.Extra == nil {
		return false
	}
	handle := cleanHandle(ev.Extra.CreatorTwitter)
	if handle == "" {
		return false
	}
	_, ok := s.banned[strings.ToLower(strings.TrimPrefix(handle, "@"))]
	return ok
}

func (s *Reconciler) createPost(ctx context.Context, tx *gorm.DB, ev *ContentPublishedEvent, n *normalized) (Outcome, error) {
	posts := repository.NewPostRepository(tx)
	exists, err := posts.ExistsByURL(ctx, ev.URL, n.canonicalURL)
	if err != nil {
		return Outcome{}, err
	}
	if exists {
		logger.Info("post with matching url already exists",
			zap.String("url", ev.URL),
			zap.String("canonical_url", n.canonicalURL))
		return Outcome{Status: OutcomeSkipped, Reason: SkipDuplicateURL}, nil
	}

	var scoutID *string
	origin := n.origin
	if ev.SubmissionID != "" {
		subs := repository.NewSubmissionRepository(tx)
		sub, err := subs.GetByID(ctx, ev.SubmissionID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logger.Info("submission vanished before acceptance",
				zap.String("submission_id", ev.SubmissionID))
			// 没有可挂的 scout 就不算精选渠道
			origin = ev.Origin
			if origin == "" {
				origin = model.OriginCrawler
			}
		case err != nil:
			return Outcome{}, err
		default:
			if n.authorID != nil && *n.authorID == sub.UserID {
				// 自荐守卫：scout 即作者时驳回投稿且不建帖
				if err := subs.UpdateStatus(ctx, sub.ID, model.SubmissionStatusRejected, ReasonScoutIsAuthor); err != nil {
					return Outcome{}, err
				}
				logger.Info("submission rejected, scout is author",
					zap.String("submission_id", sub.ID),
					zap.String("user_id", sub.UserID))
				return Outcome{Status: OutcomeSkipped, Reason: SkipScoutIsAuthor}, nil
			}
			if err := subs.UpdateStatus(ctx, sub.ID, model.SubmissionStatusAccepted, ""); err != nil {
				return Outcome{}, err
			}
			uid := sub.UserID
			scoutID = &uid
		}
	}

	now := time.Now()
	visible := n.title != ""
	var visibleAt *time.Time
	if visible {
		visibleAt = &now
	}

	flags := model.FlagMap{
		model.FlagPrivate:    n.private,
		model.FlagVisible:    visible,
		model.FlagShowOnFeed: !n.private,
		// 私密集合或无作者的帖子不再出分析报告
		model.FlagSentAnalyticsReport: n.private || n.authorID == nil,
	}

	extra := ev.Extra
	if extra == nil {
		extra = &PublishedExtra{}
	}
	id := s.ids.New()
	post := &model.Post{
		ID:                id,
		ShortID:           id,
		ExternalID:        ev.ID,
		Type:              n.postType,
		URL:               ev.URL,
		CanonicalURL:      n.canonicalURL,
		Title:             n.title,
		Image:             ev.Image,
		AuthorID:          n.authorID,
		ScoutID:           scoutID,
		SourceID:          ev.SourceID,
		Origin:            origin,
		Visible:           visible,
		VisibleAt:         visibleAt,
		MetadataChangedAt: n.metaChangedAt,
		Private:           n.private,
		TagsStr:           n.tagsStr,
		Flags:             flags,
		Summary:           extra.Summary,
		Description:       extra.Description,
		TOC:               extra.TOC,
		SiteTwitter:       extra.SiteTwitter,
		CreatorTwitter:    extra.CreatorTwitter,
		ReadTime:          extra.ReadTime,
		ContentCuration:   strings.Join(extra.ContentCuration, ","),
		Paid:              ev.Paid,
		SortOrder:         ev.Order,
		// 粗粒度时间分作为初始热度
		Score:     now.UnixMilli() / 60_000,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := posts.Create(ctx, post); err != nil {
		return Outcome{}, err
	}

	kw := repository.NewKeywordRepository(tx)
	if err := kw.EnsureVocabulary(ctx, n.merged); err != nil {
		return Outcome{}, err
	}
	if err := kw.ApplyPostKeywords(ctx, post.ID, n.allowed); err != nil {
		return Outcome{}, err
	}
	if err := kw.ApplyPostQuestions(ctx, post.ID, n.questions); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: OutcomeApplied, PostID: post.ID}, nil
}

func (s *Reconciler) updatePost(ctx context.Context, tx *gorm.DB, ev *ContentPublishedEvent, n *normalized) (Outcome, error) {
	posts := repository.NewPostRepository(tx)
	existing, err := posts.GetByID(ctx, ev.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("update for unknown post", zap.String("post_id", ev.PostID))
			return Outcome{Status: OutcomeSkipped, Reason: SkipMissingPost}, nil
		}
		return Outcome{}, err
	}
	// 声明类型与存量不符视作目标缺失，防止跨子类型写入
	if n.typeDeclared && existing.Type != n.postType {
		logger.Info("declared content type does not match stored post",
			zap.String("post_id", existing.ID),
			zap.String("declared", string(n.postType)),
			zap.String("stored", string(existing.Type)))
		return Outcome{Status: OutcomeSkipped, Reason: SkipMissingPost}, nil
	}
	// 过期/重复投递
	if !existing.MetadataChangedAt.Before(n.metaChangedAt) {
		logger.Info("stale content update discarded",
			zap.String("post_id", existing.ID),
			zap.Time("stored", existing.MetadataChangedAt),
			zap.Time("incoming", n.metaChangedAt))
		return Outcome{Status: OutcomeSkipped, Reason: SkipStaleUpdate}, nil
	}

	sourceID := ev.SourceID
	if ev.Origin == model.OriginSquad {
		// squad 渠道不携带真实集合 id
		sourceID = model.UnknownSource
	}
	if sourceID == "" {
		sourceID = existing.SourceID
	}

	title := n.title
	if title == "" {
		title = existing.Title
	}

	// Freeform 可见性在创建时已定，其余类型补标题即转可见
	visible := existing.Visible
	if existing.Type != model.PostTypeFreeform {
		visible = existing.Visible || title != ""
	}
	becameVisible := visible && !existing.Visible

	var visibleAt *time.Time
	if visible {
		if existing.VisibleAt != nil {
			visibleAt = existing.VisibleAt
		} else {
			t := n.metaChangedAt
			visibleAt = &t
		}
	}

	author := n.authorID
	if author == nil {
		author = existing.AuthorID
	}

	tagsStr := existing.TagsStr
	if n.tagsProvided {
		tagsStr = n.tagsStr
	}

	// flags 以拉取行为基底只动可见性/私密位相关子键，其余键原样保留
	flags := existing.Flags
	if flags == nil {
		flags = model.FlagMap{}
	}
	flags[model.FlagPrivate] = n.private
	flags[model.FlagVisible] = visible
	flags[model.FlagShowOnFeed] = !n.private
	sent, _ := flags[model.FlagSentAnalyticsReport].(bool)
	flags[model.FlagSentAnalyticsReport] = sent || n.private || author == nil

	extra := ev.Extra
	if extra == nil {
		extra = &PublishedExtra{}
	}
	updated := *existing
	updated.ExternalID = ev.ID
	if ev.URL != "" {
		updated.URL = ev.URL
	}
	if n.canonicalURL != "" {
		updated.CanonicalURL = n.canonicalURL
	}
	updated.Title = title
	if ev.Image != "" {
		updated.Image = ev.Image
	}
	updated.AuthorID = author
	updated.SourceID = sourceID
	if ev.Origin != "" {
		updated.Origin = ev.Origin
	}
	updated.Visible = visible
	updated.VisibleAt = visibleAt
	updated.MetadataChangedAt = n.metaChangedAt
	updated.Private = n.private
	updated.TagsStr = tagsStr
	updated.Flags = flags
	updated.Summary = extra.Summary
	updated.Description = extra.Description
	updated.TOC = extra.TOC
	updated.SiteTwitter = extra.SiteTwitter
	updated.CreatorTwitter = extra.CreatorTwitter
	if extra.ReadTime != nil {
		updated.ReadTime = extra.ReadTime
	}
	if len(extra.ContentCuration) > 0 {
		updated.ContentCuration = strings.Join(extra.ContentCuration, ",")
	}
	updated.Paid = ev.Paid

	cols := filterColumns(existing.Type, []string{
		"external_id", "url", "canonical_url", "title", "image",
		"author_id", "source_id", "origin",
		"visible", "visible_at", "metadata_changed_at",
		"private", "tags_str", "flags",
		"summary", "description", "toc",
		"site_twitter", "creator_twitter", "read_time",
		"content_curation", "paid",
	})
	if err := posts.UpdateColumns(ctx, &updated, cols); err != nil {
		return Outcome{}, err
	}

	// 被包裹帖子转可见后级联同步 share 壳
	if becameVisible {
		if err := posts.SyncSharesVisible(ctx, existing.ID, visibleAt, n.private); err != nil {
			return Outcome{}, err
		}
	}

	kw := repository.NewKeywordRepository(tx)
	if err := kw.EnsureVocabulary(ctx, n.merged); err != nil {
		return Outcome{}, err
	}
	// tag 串变化时对存量行（非事件）上的旧串做差量
	if tagsStr != existing.TagsStr {
		if err := kw.RemovePostKeywords(ctx, existing.ID, splitTags(existing.TagsStr)); err != nil {
			return Outcome{}, err
		}
		if err := kw.ApplyPostKeywords(ctx, existing.ID, n.allowed); err != nil {
			return Outcome{}, err
		}
	}
	if err := kw.ApplyPostQuestions(ctx, existing.ID, n.questions); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: OutcomeApplied, PostID: existing.ID}, nil
}
