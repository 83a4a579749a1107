package model

import "time"

// Source 内容集合（公开 feed 或 squad），ingestion 只读
type Source struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"type:varchar(255)"`
	Private   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Source) TableName() string { return "sources" }
