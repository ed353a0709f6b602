package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
)

// m holds the package's expvar counters, published once under
// /debug/vars by the service's debug mux.
var m = struct {
	requests  *expvar.Int
	goroutine *expvar.Int
	errors    *expvar.Int
}{
	requests:  expvar.NewInt("requests"),
	goroutine: expvar.NewInt("goroutines"),
	errors:    expvar.NewInt("errors"),
}

// Metrics updates program counters on every request.
func Metrics() web.Middleware {
	m2 := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			m.requests.Add(1)
			m.goroutine.Set(int64(runtime.NumGoroutine()))
			if err != nil {
				m.errors.Add(1)
			}

			return err
		}

		return h
	}

	return m2
}
