package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
)

type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	UpdateStatus(ctx context.Context, id, status, reason string) error
}

type submissionRepository struct{ db *gorm.DB }

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id, status, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "reason": reason}).Error
}
