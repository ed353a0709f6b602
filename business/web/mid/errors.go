package mid

import (
	"context"
	"net/http"

	"github.com/hanqo/ScaleOutDistributedLedger/business/web/errs"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a
// uniform way, and logs anything unexpected before responding with a
// generic 500.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				v, verr := web.GetValues(ctx)
				if verr != nil {
					return web.NewShutdownError("web value missing from context")
				}

				log.Errorw("request error", "traceid", v.TraceID, "ERROR", err)

				var status int
				switch {
				case errs.IsTrusted(err):
					status = errs.GetTrusted(err).Status

				case isFieldErrors(err):
					status = http.StatusBadRequest

				default:
					status = http.StatusInternalServerError
				}

				if respErr := web.Respond(ctx, w, errs.NewResponse(unwrapTrusted(err)), status); respErr != nil {
					return respErr
				}

				// Return the original error so App.Handle can still detect
				// and act on a shutdown error after it has been reported.
				return err
			}

			return nil
		}

		return h
	}

	return m
}

func isFieldErrors(err error) bool {
	_, ok := err.(web.FieldErrors)
	return ok
}

// unwrapTrusted returns the error that should be reported to the client:
// the wrapped error for a Trusted, or err itself otherwise.
func unwrapTrusted(err error) error {
	if t := errs.GetTrusted(err); t != nil {
		return t.Err
	}
	return err
}
