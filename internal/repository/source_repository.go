package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
)

type SourceRepository interface {
	// GetPrivacy 直接按 source id 查私密位
	GetPrivacy(ctx context.Context, sourceID string) (bool, error)
	// GetPrivacyByPost 事件未带 source 时，经帖子已有归属间接取私密位
	GetPrivacyByPost(ctx context.Context, postID string) (bool, error)
}

type sourceRepository struct{ db *gorm.DB }

func NewSourceRepository(db *gorm.DB) SourceRepository { return &sourceRepository{db: db} }

func (r *sourceRepository) GetPrivacy(ctx context.Context, sourceID string) (bool, error) {
	var src model.Source
	if err := r.db.WithContext(ctx).Where("id = ?", sourceID).First(&src).Error; err != nil {
		return false, err
	}
	return src.Private, nil
}

func (r *sourceRepository) GetPrivacyByPost(ctx context.Context, postID string) (bool, error) {
	var private bool
	err := r.db.WithContext(ctx).
		Model(&model.Source{}).
		Select("sources.private").
		Joins("JOIN posts ON posts.source_id = sources.id").
		Where("posts.id = ?", postID).
		Scan(&private).Error
	if err != nil {
		return false, err
	}
	return private, nil
}
