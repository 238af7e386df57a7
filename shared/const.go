package shared

const (
	UserID    = "user_id"
	LoginID   = "login_id"
	UserRole  = "user_role"
	ClientIP  = "client_ip"
	UserAgent = "user_agent"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Stable machine-readable reason codes returned to callers.
const (
	CodeInvalidCredentials  = "AUTH_001"
	CodeAccountDisabled     = "AUTH_003"
	CodeTokenExpired        = "AUTH_005"
	CodeTokenInvalid        = "AUTH_006"
	CodeRefreshTokenInvalid = "AUTH_007"
	CodeRateLimitExceeded   = "RATE_001"
	CodeUserNotFound        = "USER_001"
	CodeDuplicateLoginID    = "USER_003"
	CodeDuplicateEmail      = "USER_004"
	CodeValidationFailed    = "VAL_001"
	CodeInternalError       = "SRV_001"
)

// Rate limit tier names, narrowest window first.
const (
	TierMinute = "minute"
	TierHour   = "hour"
	TierDay    = "day"
)
