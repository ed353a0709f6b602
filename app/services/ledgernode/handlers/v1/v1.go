// Package v1 contains the full set of handler functions and routes
// supported by the v1 ledger API.
package v1

import (
	"net/http"

	"github.com/hanqo/ScaleOutDistributedLedger/app/services/ledgernode/handlers/v1/private"
	"github.com/hanqo/ScaleOutDistributedLedger/app/services/ledgernode/handlers/v1/public"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/events"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/store"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Store  *store.LocalStore
	Worker *comm.Worker
	Peers  *peer.Set
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 wallet-facing routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		Store:  cfg.Store,
		Worker: cfg.Worker,
		Peers:  cfg.Peers,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/unspent", pbl.Unspent)
	app.Handle(http.MethodGet, version, "/chain/:owner", pbl.Chain)
	app.Handle(http.MethodPost, version, "/transfer", pbl.Transfer)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 node-to-node routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:    cfg.Log,
		Worker: cfg.Worker,
	}

	app.Handle(http.MethodGet, version, "/comm/events", prv.Events)
}
