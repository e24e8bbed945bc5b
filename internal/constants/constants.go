package constants

// Session and context keys
const (
	SessionCookieName = "taskflow_session"
	ContextKeyUserID  = "user_id"
	ContextKeyCaller  = "caller"
)

// Validation limits
const (
	MinPasswordLength    = 8
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI task suggestions
const MaxSuggestedTasks = 20
