package service

// 投稿驳回原因，未识别的 key 一律折叠为 GENERIC_ERROR
const (
	ReasonGenericError   = "GENERIC_ERROR"
	ReasonPaywall        = "PAYWALL"
	ReasonMissingFields  = "MISSING_FIELDS"
	ReasonScoutIsAuthor  = "SCOUT_IS_AUTHOR"
	ReasonExistsStarted  = "EXISTS_STARTED"
	ReasonExistsAccepted = "EXISTS_ACCEPTED"
	ReasonExistsDeleted  = "EXISTS_DELETED"
)

var rejectReasons = map[string]string{
	ReasonGenericError:   "Something went wrong, try again later",
	ReasonPaywall:        "Article is behind a paywall",
	ReasonMissingFields:  "Could not fetch article metadata",
	ReasonScoutIsAuthor:  "You can not submit your own article",
	ReasonExistsStarted:  "Article is already being processed",
	ReasonExistsAccepted: "Article has already been submitted",
	ReasonExistsDeleted:  "Article has been removed",
}

// NormalizeRejectReason 把事件携带的原因 key 收敛到已知集合
func NormalizeRejectReason(key string) string {
	if _, ok := rejectReasons[key]; ok {
		return key
	}
	return ReasonGenericError
}

// RejectReasonMessage 原因 key 对应的用户可读文案
func RejectReasonMessage(key string) string {
	if msg, ok := rejectReasons[key]; ok {
		return msg
	}
	return rejectReasons[ReasonGenericError]
}
