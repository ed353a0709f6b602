package web

import (
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
)

// Param returns the value of the named path parameter httptreemux
// captured for this request, or "" if there isn't one.
func Param(r *http.Request, key string) string {
	m := httptreemux.ContextParams(r.Context())
	return m[key]
}
