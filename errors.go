package mizuchi

// An Error is a framework error raised deliberately by a userland callback.
// The server converts it into an error action for services, or into a 500
// response for middlewares, instead of failing the request outright.
type Error struct {
	Message string
	Code    int
	Status  string
}

// NewError creates a framework error with a message.
func NewError(message string) *Error { return &Error{Message: message} }

// Error satisfies the error interface.
func (e *Error) Error() string { return e.Message }

// A CallError is the concrete type of errors reported by run-time calls.
type CallError struct {
	Reason string // fixed failure reason, part of the error message
	Err    error  // underlying cause, when there is one
}

// Unwrap reports the underlying error of c, which may be nil.
func (c *CallError) Unwrap() error { return c.Err }

// Error satisfies the error interface.
func (c *CallError) Error() string { return "Run-time call failed: " + c.Reason }
