package constants

import "time"

const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"

	HeaderRequestID       = "X-Request-ID"
	HeaderAssistantSecret = "X-Assistant-Secret"

	ScopeTokenAccess = "access"

	DefaultTimeout        = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second

	RedisKeyOAuthState = "calendar:oauth_state:"

	ProviderGoogle = "google"
)
