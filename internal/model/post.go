package model

import "time"

// PostType 帖子子类型（封闭集合）
type PostType string

const (
	PostTypeArticle  PostType = "article"
	PostTypeFreeform PostType = "freeform"
	PostTypeShare    PostType = "share"
	PostTypeWelcome  PostType = "welcome"
)

// 帖子来源渠道
const (
	OriginCrawler        = "crawler"
	OriginCommunityPicks = "community_picks"
	OriginSquad          = "squad"
)

// UnknownSource squad 渠道更新时强制写入的占位 source
const UnknownSource = "unknown"

// FlagMap 自由扩展的布尔标记袋，整列按 JSON 存储
type FlagMap map[string]any

// flags 袋中由 ingestion 维护的键
const (
	FlagPrivate             = "private"
	FlagVisible             = "visible"
	FlagShowOnFeed          = "showOnFeed"
	FlagSentAnalyticsReport = "sentAnalyticsReport"
)

// Post 内容主体，四种子类型共用一张表
// 唯一性约束：(url, canonical_url) 任一字段与已有帖子相交即视为重复
type Post struct {
	ID                string   `gorm:"primaryKey;type:varchar(14)"`
	ShortID           string   `gorm:"type:varchar(14);index:idx_post_short"`
	ExternalID        string   `gorm:"type:varchar(36);index:idx_post_external"`
	Type              PostType `gorm:"type:varchar(16);index:idx_post_type;not null"`
	URL               string   `gorm:"type:varchar(2048);index:idx_post_url"`
	CanonicalURL      string   `gorm:"type:varchar(2048);index:idx_post_canonical"`
	Title             string   `gorm:"type:text"`
	Image             string   `gorm:"type:varchar(2048)"`
	AuthorID          *string  `gorm:"type:varchar(36);index:idx_post_author"`
	ScoutID           *string  `gorm:"type:varchar(36)"`
	SourceID          string   `gorm:"type:varchar(36);index:idx_post_source"`
	Origin            string   `gorm:"type:varchar(32)"`
	Visible           bool     `gorm:"index:idx_post_visible"`
	VisibleAt         *time.Time
	MetadataChangedAt time.Time
	Private           bool
	TagsStr           string  `gorm:"type:text"`
	Flags             FlagMap `gorm:"serializer:json;type:text"`
	// 子类型专属字段，非本类型时留空
	Summary         string `gorm:"type:text"`
	Description     string `gorm:"type:text"`
	TOC             string `gorm:"type:text"`
	SiteTwitter     string `gorm:"type:varchar(64)"`
	CreatorTwitter  string `gorm:"type:varchar(64)"`
	ReadTime        *int
	SharedPostID    *string `gorm:"type:varchar(14);index:idx_post_shared"`
	ContentCuration string  `gorm:"type:text"`
	Paid            bool
	SortOrder       int `gorm:"column:sort_order"`
	Upvotes         int64
	Score           int64 `gorm:"index:idx_post_score"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Post) TableName() string { return "posts" }
