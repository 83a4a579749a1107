package model

import "time"

// 关键词词表状态
const (
	KeywordStatusAllow   = "allow"
	KeywordStatusPending = "pending"
	KeywordStatusDeny    = "deny"
)

// Keyword 受控词表，merge 时只放行 allow 状态的词
type Keyword struct {
	Value     string `gorm:"primaryKey;type:varchar(64)"`
	Status    string `gorm:"type:varchar(16);index:idx_keyword_status;not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Keyword) TableName() string { return "keywords" }

// PostKeyword 帖子-关键词关联
// 复合唯一键，避免重复 (post, keyword)
type PostKeyword struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(14);index:idx_pk_post;uniqueIndex:ux_pk_post_keyword"`
	Keyword   string `gorm:"type:varchar(64);uniqueIndex:ux_pk_post_keyword"`
	CreatedAt time.Time
}

func (PostKeyword) TableName() string { return "post_keywords" }

// PostQuestion 帖子-提取问题关联，更新路径只增不删
type PostQuestion struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(14);index:idx_pq_post;uniqueIndex:ux_pq_post_question"`
	Question  string `gorm:"type:varchar(512);uniqueIndex:ux_pq_post_question"`
	CreatedAt time.Time
}

func (PostQuestion) TableName() string { return "post_questions" }
