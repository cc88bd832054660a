package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Content Types
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain; charset=utf-8"

	// Context keys
	ContextKeyOperatorID   = "operator_id"
	ContextKeyOperatorRole = "operator_role"
	ContextKeyRequestID    = "request_id"

	// Casbin resources and actions
	ResourcePayments = "payments"
	ActionRefund     = "refund"
	ActionRead       = "read"

	// RoleAdmin may refund any payment.
	RoleAdmin = "admin"

	ErrMsgInternalServerError = "Internal server error occurred"
)
