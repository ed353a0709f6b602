package web

import (
	"context"
	"errors"
	"time"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// valuesKey is how request-scoped Values are stored on the context.
const valuesKey ctxKey = 1

// Values carries request-scoped information set by App.Handle and read by
// handlers and middleware further down the chain.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// GetValues returns the Values stored on ctx by App.Handle.
func GetValues(ctx context.Context) (*Values, error) {
	v, ok := ctx.Value(valuesKey).(*Values)
	if !ok {
		return nil, errors.New("web value missing from context")
	}
	return v, nil
}

// SetStatusCode records the status code a handler is about to write, so
// logging middleware further up the chain can report it after the fact.
func SetStatusCode(ctx context.Context, statusCode int) error {
	v, err := GetValues(ctx)
	if err != nil {
		return err
	}
	v.StatusCode = statusCode
	return nil
}
