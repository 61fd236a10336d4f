package payload

import "github.com/mizuchi-rpc/sdk-go/payload/ns"

// Defaults for error payloads.
const (
	DefaultErrorMessage = "Unknown error"
	DefaultErrorStatus  = "500 Internal Server Error"
)

// An ErrorPayload is the reply sent when a request cannot produce a normal
// result. Path operations are rooted at the error section.
type ErrorPayload struct {
	*Payload
}

// NewErrorPayload wraps a decoded document tree as an error payload.
func NewErrorPayload(data map[string]any) *ErrorPayload {
	return &ErrorPayload{Payload: WithPrefix(data, ns.Error)}
}

// NewError creates an error payload with a message. Zero code and empty
// status use the defaults.
func NewError(message string, code int, status string) *ErrorPayload {
	if message == "" {
		message = DefaultErrorMessage
	}
	if status == "" {
		status = DefaultErrorStatus
	}
	return NewErrorPayload(map[string]any{
		ns.Error: map[string]any{
			ns.Message: message,
			ns.Code:    int64(code),
			ns.Status:  status,
		},
	})
}

// IsError reports whether a decoded document carries an error section.
func IsError(data map[string]any) bool {
	_, ok := data[ns.Error]
	return ok
}

// Message returns the error message.
func (e *ErrorPayload) Message() string {
	return e.GetString([]string{ns.Message}, DefaultErrorMessage)
}

// Code returns the error code.
func (e *ErrorPayload) Code() int {
	if c, ok := e.Get([]string{ns.Code}, nil).(int64); ok {
		return int(c)
	}
	return 0
}

// Status returns the error status line.
func (e *ErrorPayload) Status() string {
	return e.GetString([]string{ns.Status}, DefaultErrorStatus)
}
