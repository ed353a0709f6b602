package comm_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/abstractcache"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/mainchain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/store"
)

// fakeTracker satisfies both store.Tracker (used to resolve a sender's
// public key on receipt) and comm.Tracker (used by the worker's peer
// discovery loop), returning a fixed node and an empty discovery list so
// the ticker-driven loop is a harmless no-op during the test.
type fakeTracker struct {
	n node.Node
}

func (f fakeTracker) RegisterNode(ledgercrypto.PublicKey) (node.Node, error) {
	return f.n, nil
}

func (f fakeTracker) UpdateNodes() (map[node.ID]node.Node, error) {
	return map[node.ID]node.Node{f.n.ID: f.n}, nil
}

// singleDialer always dials the same pre-wired test server regardless of
// which peer is requested, standing in for DNS/address resolution in a
// test that only has one real listener.
type singleDialer struct {
	url string
}

func (d singleDialer) DialPeer(peer.Peer) (*peer.Conn, error) {
	return peer.Dial(d.url)
}

func Test_WorkerDeliversShareTxEndToEnd(t *testing.T) {
	pubA, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}
	nodeA := node.NewLocal(1, "a:9000", pubA, privA)

	pubB, privB, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}
	nodeB := node.NewLocal(2, "b:9000", pubB, privB)

	mc := mainchain.NewMemory()

	cacheA := abstractcache.New(mc, nil)
	cacheA.Run()
	defer cacheA.Shutdown()
	storeA := store.New(nodeA, node.NewRegistry(), mc, cacheA)

	cacheB := abstractcache.New(mc, nil)
	cacheB.Run()
	defer cacheB.Shutdown()
	storeB := store.New(nodeB, node.NewRegistry(), mc, cacheB)
	storeB.SetTracker(fakeTracker{n: nodeA})

	helperB := comm.NewHelper(storeB)
	workerB := comm.Run(helperB, fakeTracker{n: nodeA}, storeB, nil, peer.NewSet(), nil)
	defer workerB.Shutdown()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := peer.Accept(w, r)
		if err != nil {
			t.Errorf("should be able to accept connection: %s", err)
			return
		}
		workerB.HandleInbound(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	helperA := comm.NewHelper(storeA)
	peersA := peer.NewSet()
	peersA.Add(peer.New(nodeB.ID, "b:9000"))
	workerA := comm.Run(helperA, fakeTracker{n: nodeB}, storeA, singleDialer{url: wsURL}, peersA, nil)
	defer workerA.Shutdown()

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA.ID, ReceiverID: nodeA.ID, Amount: 100}
	b1, err := storeA.AppendOwnBlock([]chain.Transaction{mint})
	if err != nil {
		t.Fatalf("should be able to append mint block: %s", err)
	}
	if err := storeA.CommitOwnBlock(b1); err != nil {
		t.Fatalf("should be able to commit mint block: %s", err)
	}

	spend := chain.Transaction{
		Number:     1,
		SenderID:   nodeA.ID,
		ReceiverID: nodeB.ID,
		Amount:     40,
		Remainder:  60,
		Sources:    []chain.SourceKey{mint.Key()},
	}
	spend.Signature = ledgercrypto.Sign(spend.CanonicalBytes(), nodeA.PrivateKey)

	b2, err := storeA.AppendOwnBlock([]chain.Transaction{spend})
	if err != nil {
		t.Fatalf("should be able to append spend block: %s", err)
	}
	if err := storeA.CommitOwnBlock(b2); err != nil {
		t.Fatalf("should be able to commit spend block: %s", err)
	}

	spentTx, _, ok := storeA.OwnChain().Find(spend.Key())
	if !ok {
		t.Fatalf("expected to find spend on A's own chain")
	}

	workerA.SignalShareTx(nodeB.ID, spentTx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(storeB.Unspent()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	unspent := storeB.Unspent()
	if len(unspent) != 1 || unspent[0].Key() != spend.Key() {
		t.Fatalf("expected B to have received the shared transaction, got %v", unspent)
	}
}
