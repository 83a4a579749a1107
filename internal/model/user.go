package model

import "time"

// User 作者解析所需的最小用户信息
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"type:varchar(255)"`
	Twitter   string `gorm:"type:varchar(64);index:idx_user_twitter"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
