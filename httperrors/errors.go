package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	userMessage string
	fields      map[string]any
	headers     map[string]string
	err         error
}

func New(statusCode int, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		userMessage: userMessage,
		err:         internalError,
	}
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) Unwrap() error {
	return e.err
}

func (e HttpError) StatusCode() int {
	return e.statusCode
}

// WithField adds a top level field next to "error" in the response body.
func (e HttpError) WithField(key string, value any) HttpError {
	fields := make(map[string]any, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[key] = value
	e.fields = fields
	return e
}

func (e HttpError) WithHeader(key string, value string) HttpError {
	headers := make(map[string]string, len(e.headers)+1)
	for k, v := range e.headers {
		headers[k] = v
	}
	headers[key] = value
	e.headers = headers
	return e
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	for key, value := range e.headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(e.statusCode)
	data := make(map[string]any, len(e.fields)+1)
	for key, value := range e.fields {
		data[key] = value
	}
	data["error"] = e.userMessage
	return json.NewEncoder(w).Encode(data)
}
