// Package public maintains the group of handlers reachable by wallets and
// other external clients.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hanqo/ScaleOutDistributedLedger/business/web/errs"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/events"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/store"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of wallet-facing ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Store  *store.LocalStore
	Worker *comm.Worker
	Peers  *peer.Set
	Evts   *events.Events
	WS     websocket.Upgrader
}

// Status returns this node's own chain position.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := status{
		NodeID:      uint32(h.Store.OwnNode().ID),
		ChainHeight: h.Store.OwnChain().Height(),
		Unspent:     len(h.Store.Unspent()),
		KnownPeers:  len(h.Peers.Copy(h.Store.OwnNode().ID)),
	}
	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Unspent returns the set of transactions this node can still spend from.
func (h Handlers) Unspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	unspent := h.Store.Unspent()
	txs := make([]tx, len(unspent))
	for i, t := range unspent {
		txs[i] = fromTransaction(t)
	}
	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Chain returns the blocks on the named owner's mirrored chain, as this
// node currently sees it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ownerID, err := parseNodeID(web.Param(r, "owner"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	c, ok := h.Store.Chain(ownerID)
	if !ok {
		return errs.NewTrusted(fmt.Errorf("no chain known for node %d", ownerID), http.StatusNotFound)
	}

	blocks := c.Slice(0, c.Height())
	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = fromBlock(b)
	}
	return web.Respond(ctx, w, out, http.StatusOK)
}

// Transfer builds, signs and queues a transfer of value to another node,
// delivering the accompanying proof over the peer transport.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req transferRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	receiverID := node.ID(req.ReceiverID)

	tx, err := h.Store.PrepareTransfer(receiverID, req.Amount)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	b, err := h.Store.AppendOwnBlock([]chain.Transaction{tx})
	if err != nil {
		return fmt.Errorf("appending own block: %w", err)
	}

	if err := h.Store.CommitOwnBlock(b); err != nil {
		h.Log.Infow("transfer: commit deferred", "ERROR", err)
	}

	h.Worker.SignalShareTx(receiverID, tx)

	return web.Respond(ctx, w, fromTransaction(tx), http.StatusAccepted)
}

// Events streams this node's activity log to a websocket client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
