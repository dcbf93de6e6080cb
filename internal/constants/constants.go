package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
	ContextKeyActor  = "actor"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// RecentMemberCount is how many members the group list shows per group.
const RecentMemberCount = 3
