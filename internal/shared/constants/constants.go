package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType     = "Content-Type"
	HeaderXRequestID      = "X-Request-ID"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderUserAgent       = "User-Agent"
	HeaderStripeSignature = "Stripe-Signature"

	// Context keys
	ContextKeyCaller     = "caller"
	ContextKeyIdentityID = "identity_id"
	ContextKeyPrincipal  = "principal"
	ContextKeyProject    = "project"
	ContextKeyRequestID  = "request_id"

	// Table names
	TableIdentities     = "identities"
	TableProjects       = "projects"
	TableAuditLog       = "audit_log"
	TableDownloadTokens = "download_tokens"
	TableProjectFiles   = "project_files"
	TableDeliverables   = "deliverables"
	TableMessages       = "messages"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgUnauthenticated     = "Authentication required"
	ErrMsgForbidden           = "Access forbidden"
	ErrMsgValidationFailed    = "Validation failed"
)
