package model

import "time"

// Submission 用户投稿状态机 Started -> {Accepted, Rejected}
// 终态不再被 ingestion 流程改写
const (
	SubmissionStatusStarted  = "started"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRejected = "rejected"
)

type Submission struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_submission_user;not null"`
	URL       string `gorm:"type:varchar(2048)"`
	Status    string `gorm:"type:varchar(16);index:idx_submission_status;not null;default:started"`
	Reason    string `gorm:"type:varchar(32)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Submission) TableName() string { return "submissions" }
