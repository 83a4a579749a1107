package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
)

type UserRepository interface {
	// FindIDByTwitter 按 twitter handle 解析内部用户 id，未命中返回空串
	FindIDByTwitter(ctx context.Context, handle string) (string, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) FindIDByTwitter(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(handle, "@")
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(twitter) = ?", strings.ToLower(handle)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.ID, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
