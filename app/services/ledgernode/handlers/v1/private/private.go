// Package private maintains the group of handlers reachable only by other
// nodes in the peer network, never by wallets.
package private

import (
	"context"
	"net/http"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"go.uber.org/zap"
)

// Handlers manages the set of node-to-node ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Worker *comm.Worker
}

// Events upgrades the connection to the websocket transport that carries
// inbound (transaction, proof) envelopes from a peer, and services it until
// the peer disconnects or the node shuts down.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	conn, err := peer.Accept(w, r)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.Worker.HandleInbound(conn)
	return nil
}
