package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/content-engine/internal/model"
)

type KeywordRepository interface {
	// AllowedSubset 返回 raw 中处于 allow 状态的词
	AllowedSubset(ctx context.Context, raw []string) ([]string, error)
	// EnsureVocabulary 把词表没见过的词以 pending 状态补录
	EnsureVocabulary(ctx context.Context, words []string) error
	ApplyPostKeywords(ctx context.Context, postID string, keywords []string) error
	RemovePostKeywords(ctx context.Context, postID string, keywords []string) error
	ApplyPostQuestions(ctx context.Context, postID string, questions []string) error
}

type keywordRepository struct{ db *gorm.DB }

func NewKeywordRepository(db *gorm.DB) KeywordRepository { return &keywordRepository{db: db} }

func (r *keywordRepository) AllowedSubset(ctx context.Context, raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	err := r.db.WithContext(ctx).
		Model(&model.Keyword{}).
		Where("value IN ? AND status = ?", raw, model.KeywordStatusAllow).
		Pluck("value", &values).Error
	return values, err
}

func (r *keywordRepository) EnsureVocabulary(ctx context.Context, words []string) error {
	if len(words) == 0 {
		return nil
	}
	records := make([]model.Keyword, 0, len(words))
	for _, w := range words {
		records = append(records, model.Keyword{Value: w, Status: model.KeywordStatusPending})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}

func (r *keywordRepository) ApplyPostKeywords(ctx context.Context, postID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	records := make([]model.PostKeyword, 0, len(keywords))
	for _, k := range keywords {
		records = append(records, model.PostKeyword{ID: uuid.New().String(), PostID: postID, Keyword: k})
	}
	// 幂等：重复关联不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}

func (r *keywordRepository) RemovePostKeywords(ctx context.Context, postID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("post_id = ? AND keyword IN ?", postID, keywords).
		Delete(&model.PostKeyword{}).Error
}

func (r *keywordRepository) ApplyPostQuestions(ctx context.Context, postID string, questions []string) error {
	if len(questions) == 0 {
		return nil
	}
	records := make([]model.PostQuestion, 0, len(questions))
	for _, q := range questions {
		records = append(records, model.PostQuestion{ID: uuid.New().String(), PostID: postID, Question: q})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}
