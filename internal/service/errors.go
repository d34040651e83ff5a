package service

// HTTPError represents an error with an associated HTTP status code.
// Message is safe to show to the caller, Wrapped is for server-side logs only.
type HTTPError struct {
	StatusCode int
	Message    string
	Wrapped    error
}

func (e HTTPError) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return e.Message + ": " + e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, message string, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Wrapped:    err,
	}
}
