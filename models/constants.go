package models

// ✅ Decision Types (produced by a swipe or a button)
const (
	DecisionLike    DecisionType = "like"
	DecisionDislike DecisionType = "dislike"
)

// ✅ Chat Message Statuses
const (
	MessageStatusSending MessageStatus = "sending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusError   MessageStatus = "error"
)

// ✅ Connection Kinds (which remote collection a record came from)
const (
	ConnectionKindMatch ConnectionKind = "match"
	ConnectionKindLike  ConnectionKind = "like"
)

// DefaultPageSize is the recommendations page size when none is configured
const DefaultPageSize = 10
