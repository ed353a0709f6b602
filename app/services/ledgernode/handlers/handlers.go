// Package handlers binds the node's HTTP surfaces: public (wallet-facing),
// private (node-to-node), and debug.
package handlers

import (
	"context"
	"encoding/json"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"

	v1 "github.com/hanqo/ScaleOutDistributedLedger/app/services/ledgernode/handlers/v1"
	"github.com/hanqo/ScaleOutDistributedLedger/business/web/mid"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/events"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/store"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig bundles the systems every mux needs.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Store    *store.LocalStore
	Worker   *comm.Worker
	Peers    *peer.Set
	Evts     *events.Events
}

// PublicMux constructs the http.Handler for the wallet-facing API.
func PublicMux(cfg MuxConfig) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error { return nil }
	app.Handle(http.MethodOptions, "", "/*", h, mid.Cors("*"))

	v1.PublicRoutes(app, v1.Config{
		Log:    cfg.Log,
		Store:  cfg.Store,
		Worker: cfg.Worker,
		Peers:  cfg.Peers,
		Evts:   cfg.Evts,
	})

	return app
}

// PrivateMux constructs the http.Handler for node-to-node traffic.
func PrivateMux(cfg MuxConfig) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	v1.PrivateRoutes(app, v1.Config{
		Log:    cfg.Log,
		Worker: cfg.Worker,
	})

	return app
}

// debugStandardLibraryMux registers the standard library debug endpoints.
func debugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux constructs the http.Handler for liveness/readiness, runtime
// introspection, and operator admin inspection, kept separate from the
// public/private surfaces so load shedding and CORS never touch it.
func DebugMux(build string, log *zap.SugaredLogger, localStore *store.LocalStore) http.Handler {
	mux := debugStandardLibraryMux()

	mux.HandleFunc("/debug/readiness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/debug/liveness", func(w http.ResponseWriter, r *http.Request) {
		log.Infow("liveness", "build", build)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/debug/admin/nodes", func(w http.ResponseWriter, r *http.Request) {
		nodes := localStore.Nodes()
		out := make(map[string]string, len(nodes))
		for id, n := range nodes {
			out[strconv.FormatUint(uint64(id), 10)] = n.Address
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/debug/admin/cache", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]uint64{"height": localStore.CacheHeight()})
	})

	mux.HandleFunc("/debug/admin/meta/", func(w http.ResponseWriter, r *http.Request) {
		peerStr := strings.TrimPrefix(r.URL.Path, "/debug/admin/meta/")
		id, err := strconv.ParseUint(peerStr, 10, 32)
		if err != nil {
			http.Error(w, "invalid peer id", http.StatusBadRequest)
			return
		}

		snapshot := localStore.PeerMeta(node.ID(id)).Snapshot()
		out := make(map[string]int64, len(snapshot))
		for owner, height := range snapshot {
			out[strconv.FormatUint(uint64(owner), 10)] = height
		}
		json.NewEncoder(w).Encode(out)
	})

	return mux
}
