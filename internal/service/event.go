package service

import "time"

// PublishedExtra content-published 事件的附加元数据袋
type PublishedExtra struct {
	Keywords        []string `json:"keywords,omitempty"`
	Questions       []string `json:"questions,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Description     string   `json:"description,omitempty"`
	ReadTime        *int     `json:"read_time,omitempty"`
	CanonicalURL    string   `json:"canonical_url,omitempty"`
	SiteTwitter     string   `json:"site_twitter,omitempty"`
	CreatorTwitter  string   `json:"creator_twitter,omitempty"`
	TOC             string   `json:"toc,omitempty"`
	ContentCuration []string `json:"content_curation,omitempty"`
}

// ContentPublishedEvent 爬虫/投稿产出的入库事件
// PostID 为空表示创建，非空表示对既有帖子的元数据更新
type ContentPublishedEvent struct {
	ID           string          `json:"id"`
	PostID       string          `json:"post_id,omitempty"`
	URL          string          `json:"url"`
	Image        string          `json:"image,omitempty"`
	Title        string          `json:"title,omitempty"`
	ContentType  string          `json:"content_type,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	SubmissionID string          `json:"submission_id,omitempty"`
	SourceID     string          `json:"source_id,omitempty"`
	Origin       string          `json:"origin,omitempty"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
	Paid         bool            `json:"paid,omitempty"`
	Order        int             `json:"order,omitempty"`
	Extra        *PublishedExtra `json:"extra,omitempty"`
}
