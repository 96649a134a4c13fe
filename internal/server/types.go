package server

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// ParamError is a query parameter error carrying the HTTP status to answer
// with.
type ParamError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e ParamError) Error() string {
	return e.Message
}
