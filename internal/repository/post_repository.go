package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/model"
)

type PostRepository interface {
	// GetByID 按主键取帖子，未命中返回 gorm.ErrRecordNotFound
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// ExistsByURL 四向查重：url / canonical_url 任一与入参任一相等即算存在
	ExistsByURL(ctx context.Context, url, canonicalURL string) (bool, error)
	Create(ctx context.Context, post *model.Post) error
	// UpdateColumns 只写 cols 中列出的列（update 路径的白名单裁剪结果）
	UpdateColumns(ctx context.Context, post *model.Post, cols []string) error
	// SyncSharesVisible 被包裹帖子转可见后，同步其所有 share 壳的可见性与私密位
	SyncSharesVisible(ctx context.Context, sharedPostID string, visibleAt any, private bool) error
}

type postRepository struct{ db *gorm.DB }

// NewPostRepository db 传连接或事务句柄均可，事务内调用方传 tx
func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ExistsByURL(ctx context.Context, url, canonicalURL string) (bool, error) {
	values := make([]string, 0, 2)
	if url != "" {
		values = append(values, url)
	}
	if canonicalURL != "" {
		values = append(values, canonicalURL)
	}
	if len(values) == 0 {
		return false, nil
	}
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("url IN ? OR canonical_url IN ?", values, values).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) UpdateColumns(ctx context.Context, post *model.Post, cols []string) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Select(cols).
		Updates(post).Error
}

func (r *postRepository) SyncSharesVisible(ctx context.Context, sharedPostID string, visibleAt any, private bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("type = ? AND shared_post_id = ?", model.PostTypeShare, sharedPostID).
		Updates(map[string]any{
			"visible":    true,
			"visible_at": visibleAt,
			"private":    private,
		}).Error
}
