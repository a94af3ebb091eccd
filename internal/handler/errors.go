package handler

// Request-level error messages
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request. Please check your inputs."
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgMissingPathParam      = "Missing %s path parameter"
	ErrMsgInvalidLimitParam     = "Invalid limit parameter"
)

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgStoreUnavailable   = "Achievement store is temporarily unavailable. Please try again later."
	ErrMsgInvalidInputError  = "Invalid request. Please check your inputs."
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
