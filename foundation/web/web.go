// Package web provides the thin HTTP plumbing every service in this
// module is built on: a context-aware handler signature, composable
// middleware, and an httptreemux-backed App that wires the two together
// and knows how to ask the process to shut down when a handler reports a
// non-recoverable error.
package web

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
)

// Handler is the signature every application handler implements: context
// in, error out. The error, if any, is inspected by App's wrapper to
// decide whether to respond with it or escalate to a shutdown.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler with cross-cutting behavior and returns the
// wrapped Handler, the same shape httptreemux-based services in this
// corpus use for CORS, logging, panic recovery, and error translation.
type Middleware func(Handler) Handler

// App is the root of one HTTP surface (public, private, or debug): a
// mux plus the middleware stack applied to every route registered on it.
type App struct {
	mux      *httptreemux.ContextMux
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp constructs an App. mw is applied to every handler, outermost
// first, in the order given.
func NewApp(shutdown chan os.Signal, mw ...Middleware) *App {
	return &App{
		mux:      httptreemux.NewContextMux(),
		shutdown: shutdown,
		mw:       mw,
	}
}

// SignalShutdown tells main to begin a graceful shutdown, the same way an
// OS interrupt would.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

// ServeHTTP implements http.Handler by delegating to the underlying mux.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Handle registers a route at group+path (group is typically an API
// version like "v1"; pass "" to register at the bare path, as debug
// endpoints do) for method. mw wraps handler inside the app-level
// middleware stack, so the app-level middleware runs first.
func (a *App) Handle(method, group, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v := Values{
			TraceID: uuid.NewString(),
			Now:     time.Now(),
		}
		ctx = context.WithValue(ctx, valuesKey, &v)

		if err := handler(ctx, w, r); err != nil {
			if isShutdown(err) {
				a.SignalShutdown()
			}
		}
	}

	finalPath := path
	if group != "" {
		finalPath = "/" + group + path
	}
	a.mux.Handle(method, finalPath, h)
}

// wrapMiddleware folds mw around handler in reverse order, so the first
// middleware in the slice is the outermost wrapper.
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if m := mw[i]; m != nil {
			handler = m(handler)
		}
	}
	return handler
}
