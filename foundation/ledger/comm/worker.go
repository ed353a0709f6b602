package comm

import (
	"fmt"
	"sync"
	"time"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
)

// peerUpdateInterval is how often the worker asks the tracker for the
// current node list and the retry queue for anything still pending.
const peerUpdateInterval = 30 * time.Second

// maxShareRequests bounds the outbound share queue; once full, new share
// requests are dropped rather than blocking the caller.
const maxShareRequests = 100

// EventHandler records what the worker is doing, following the cache and
// abstract-cache packages' varargs logging hook rather than a structured
// logger.
type EventHandler func(format string, v ...any)

// Tracker discovers the other nodes currently registered with the
// directory service.
type Tracker interface {
	UpdateNodes() (map[node.ID]node.Node, error)
}

// Retrier is the subset of LocalStore the worker drives on its own
// schedule, independent of any particular send or receive.
type Retrier interface {
	RetryFailedCommits()
}

// Dialer opens an outbound connection to a peer's communication server,
// kept as an interface so tests can substitute an in-memory transport.
type Dialer interface {
	DialPeer(p peer.Peer) (*peer.Conn, error)
}

// shareRequest is one unit of outbound work: send tx to receiverID.
type shareRequest struct {
	receiverID node.ID
	tx         chain.Transaction
}

// Worker runs a node's communication background processes: peer discovery,
// outbound transaction sharing, and failed main-chain commit retries. It
// mirrors the teacher blockchain service's worker: peer discovery and the
// periodic commit retry share one goroutine, outbound sharing runs in
// another, coordinated by a shared shutdown channel and WaitGroup.
type Worker struct {
	helper  *Helper
	tracker Tracker
	retrier Retrier
	dialer  Dialer
	peers   *peer.Set

	mu    sync.Mutex
	conns map[node.ID]*peer.Conn

	evHandler EventHandler

	ticker *time.Ticker
	shut   chan struct{}
	wg     sync.WaitGroup

	shareQueue chan shareRequest
}

// Run constructs a Worker and starts its background goroutines, returning
// once all of them report they are running.
func Run(helper *Helper, tracker Tracker, retrier Retrier, dialer Dialer, peers *peer.Set, evHandler EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	w := &Worker{
		helper:     helper,
		tracker:    tracker,
		retrier:    retrier,
		dialer:     dialer,
		peers:      peers,
		conns:      make(map[node.ID]*peer.Conn),
		evHandler:  evHandler,
		ticker:     time.NewTicker(peerUpdateInterval),
		shut:       make(chan struct{}),
		shareQueue: make(chan shareRequest, maxShareRequests),
	}

	operations := []func(){
		w.peerOperations,
		w.shareOperations,
	}

	w.wg.Add(len(operations))
	started := make(chan struct{})
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			started <- struct{}{}
			op()
		}(op)
	}
	for range operations {
		<-started
	}

	return w
}

// Shutdown stops every background goroutine and waits for them to exit.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()
	close(w.shut)
	w.wg.Wait()

	w.mu.Lock()
	for id, c := range w.conns {
		c.Close()
		delete(w.conns, id)
	}
	w.mu.Unlock()
}

// SignalShareTx queues tx to be sent to receiverID. If the queue is full
// the request is dropped and is not queued again.
func (w *Worker) SignalShareTx(receiverID node.ID, tx chain.Transaction) {
	select {
	case w.shareQueue <- shareRequest{receiverID: receiverID, tx: tx}:
		w.evHandler("worker: SignalShareTx: queued send to %d", receiverID)
	default:
		w.evHandler("worker: SignalShareTx: queue full, dropping send to %d", receiverID)
	}
}

func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// peerOperations periodically refreshes the peer set from the tracker.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: started")
	defer w.evHandler("worker: peerOperations: completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeerUpdate()
			}
		case <-w.shut:
			return
		}
	}
}

func (w *Worker) runPeerUpdate() {
	nodes, err := w.tracker.UpdateNodes()
	if err != nil {
		w.evHandler("worker: runPeerUpdate: ERROR: %s", err)
		return
	}

	for id, n := range nodes {
		if w.peers.Add(peer.New(id, n.Address)) {
			w.evHandler("worker: runPeerUpdate: discovered peer %d", id)
		}
	}

	w.retrier.RetryFailedCommits()
}

// shareOperations drains the outbound share queue, dialing (and caching)
// a connection to the receiver before handing it a constructed envelope.
func (w *Worker) shareOperations() {
	w.evHandler("worker: shareOperations: started")
	defer w.evHandler("worker: shareOperations: completed")

	for {
		select {
		case req := <-w.shareQueue:
			if !w.isShutdown() {
				w.runShare(req)
			}
		case <-w.shut:
			return
		}
	}
}

func (w *Worker) runShare(req shareRequest) {
	env, err := w.helper.Send(req.receiverID, req.tx)
	if err != nil {
		w.evHandler("worker: runShare: constructing proof for %d: ERROR: %s", req.receiverID, err)
		return
	}

	conn, err := w.connFor(req.receiverID)
	if err != nil {
		w.evHandler("worker: runShare: dialing %d: ERROR: %s", req.receiverID, err)
		return
	}

	if err := conn.Send(env); err != nil {
		w.evHandler("worker: runShare: sending to %d: ERROR: %s", req.receiverID, err)
		w.mu.Lock()
		delete(w.conns, req.receiverID)
		w.mu.Unlock()
	}
}

func (w *Worker) connFor(id node.ID) (*peer.Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if c, ok := w.conns[id]; ok {
		return c, nil
	}

	p, ok := w.peers.Get(id)
	if !ok {
		return nil, fmt.Errorf("peer %d: unknown", id)
	}

	c, err := w.dialer.DialPeer(p)
	if err != nil {
		return nil, err
	}

	w.conns[id] = c
	return c, nil
}

// HandleInbound runs conn's receive loop until the connection closes,
// verifying and applying every envelope it delivers. It is started by the
// HTTP handler that accepted conn from an incoming websocket upgrade.
func (w *Worker) HandleInbound(conn *peer.Conn) {
	w.evHandler("worker: handleInbound: started")
	defer w.evHandler("worker: handleInbound: completed")

	for {
		env, err := conn.Receive()
		if err != nil {
			w.evHandler("worker: handleInbound: receive: ERROR: %s", err)
			return
		}

		if err := w.helper.Receive(env); err != nil {
			w.evHandler("worker: handleInbound: from %d: ERROR: %s", env.SenderID, err)
			continue
		}
	}
}
