package mid

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
)

// Panics recovers from panics in the handler chain below it and converts
// them into errors so Errors can respond and the process stays up.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("panic: %v: %s", rec, string(debug.Stack()))
				}
			}()

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
