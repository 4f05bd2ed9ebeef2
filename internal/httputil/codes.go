package httputil

// Machine-readable error codes sent alongside error messages.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDeclined           = "DECLINED"
	CodeConflict           = "CONFLICT"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeInvalidAPIKey      = "INVALID_API_KEY"
	CodeUserExists         = "USER_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeMissingFields      = "MISSING_REQUIRED_FIELDS"
	CodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	CodeAlreadyVerified    = "PAYMENT_ALREADY_VERIFIED"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
)
