package web

import "errors"

// shutdownError is a handler's way of telling App that the process has
// reached a state it cannot recover from and should begin shutting down,
// rather than just failing this one request.
type shutdownError struct {
	message string
}

// NewShutdownError wraps message as an error that, when returned from a
// Handler, triggers App.SignalShutdown.
func NewShutdownError(message string) error {
	return &shutdownError{message: message}
}

func (e *shutdownError) Error() string {
	return e.message
}

// isShutdown reports whether err (or something it wraps) is a shutdown
// error.
func isShutdown(err error) bool {
	var se *shutdownError
	return errors.As(err, &se)
}
