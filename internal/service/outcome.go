package service

// OutcomeStatus 单个事件的处理结果
type OutcomeStatus string

const (
	// OutcomeApplied 创建或更新落库成功
	OutcomeApplied OutcomeStatus = "applied"
	// OutcomeSkipped 良性空操作（重复、过期、目标缺失等）
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeRejectedSubmission 投稿被置为 Rejected，未产生帖子
	OutcomeRejectedSubmission OutcomeStatus = "rejected_submission"
	// OutcomeFailed 事务级失败，已记日志，事件不重抛
	OutcomeFailed OutcomeStatus = "failed"
)

// skip 原因，测试按值断言而非翻日志
const (
	SkipMissingSubmission   = "submission-missing"
	SkipSubmissionFinalized = "submission-finalized"
	SkipBannedAuthor        = "banned-author"
	SkipDuplicateURL        = "duplicate-url"
	SkipStaleUpdate         = "stale-update"
	SkipMissingPost         = "post-missing"
	SkipScoutIsAuthor       = "scout-is-author"
)

type Outcome struct {
	Status OutcomeStatus
	Reason string
	PostID string
}
