package models

// Error codes returned in ErrorResponse.Code
const (
	CodeInternal           = "E1000_INTERNAL_SERVER_ERROR"
	CodeValidationFailed   = "E1001_VALIDATION_FAILED"
	CodeUnauthenticated    = "E2000_UNAUTHENTICATED"
	CodeInvalidCredentials = "E2001_INVALID_CREDENTIALS"
	CodeUserNotFound       = "E4000_USER_NOT_FOUND"
	CodeSlugAlreadyExists  = "E5000_SLUG_ALREADY_EXISTS"
	CodeURLNotFound        = "E5001_URL_NOT_FOUND"
	CodeInvalidURL         = "E5002_INVALID_URL"
	CodeTooManyRequests    = "E8001_TOO_MANY_REQUESTS"
)

// ErrorResponse is the body of every error reply, from handlers and
// middleware alike.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
