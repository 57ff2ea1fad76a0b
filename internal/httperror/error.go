package httperror

// HttpError is the typed failure every domain error is raised as: an HTTP status
// code, a short status phrase, and a human message.
type HttpError struct {
	Status        int
	StatusMessage string
	Message       string
}

// New creates a new HttpError
func New(status int, statusMessage, message string) *HttpError {
	return &HttpError{Status: status, StatusMessage: statusMessage, Message: message}
}

func (e *HttpError) Error() string {
	return e.Message
}
