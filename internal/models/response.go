package models

// Response status values for API responses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the uniform JSON envelope returned by every endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a success response with an optional result.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: StatusSuccess, Result: result}
}

// SuccessWithMessage creates a success response with a message and optional result.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: StatusSuccess, Message: message, Result: result}
}

// Error creates an error response with the given message.
func Error(message string) APIResponse {
	return APIResponse{Status: StatusError, Message: message}
}
