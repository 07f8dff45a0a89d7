package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys set by middleware
	ContextKeyFID       = "fid"
	ContextKeyRequestID = "request_id"

	TablePremiumEntitlements  = "premium_entitlements"
	TableConsumedTransactions = "consumed_transactions"
)
