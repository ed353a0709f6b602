// Package store implements LocalStore, the passive aggregate a ledger node
// builds its sends and receives against: its own chain, a node table, the
// unspent transactions it can still spend from, and the collaborators
// (main chain, abstract cache) proof construction and verification need.
package store

import (
	"fmt"
	"sync"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/abstractcache"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgererr"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/mainchain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/metaknowledge"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/proof"
)

// Tracker is the external node-discovery collaborator consulted whenever a
// node table lookup misses. It is out of scope as a concrete
// implementation; the store only needs its two operations.
type Tracker interface {
	RegisterNode(pub ledgercrypto.PublicKey) (node.Node, error)
	UpdateNodes() (map[node.ID]node.Node, error)
}

// LocalStore is the aggregate a single ledger node keeps: its own identity
// and chain, mirrors of every other owner's chain it has been shown,
// per-peer meta-knowledge estimates, the set of transactions it can still
// spend from, a consumed-source index guarding against double spends, and
// the collaborators needed to commit and verify finality.
type LocalStore struct {
	mu sync.Mutex

	ownNode node.Node
	nodes   *node.Registry
	tracker Tracker

	chains map[node.ID]*chain.Chain

	// peerMeta[p] is this store's best current estimate of what peer p
	// already knows, keyed further by chain owner. It drives proof
	// pruning on send and is advanced whenever this store hands p a proof
	// on send, or p is the sender of a proof this store just verified.
	peerMeta map[node.ID]*metaknowledge.MetaKnowledge

	unspent  map[chain.SourceKey]chain.Transaction
	consumed map[chain.SourceKey]bool

	mainChain mainchain.Client
	cache     *abstractcache.Cache

	// pendingCommits holds abstracts whose main-chain commit failed, to be
	// retried at the node's next send opportunity rather than lost.
	pendingCommits []chain.Abstract

	// nextTxNumber is the next per-sender transaction number this node
	// will issue, whether by mint or by transfer.
	nextTxNumber uint32
}

// New constructs a LocalStore for ownNode, seeding its own chain with
// genesis and registering ownNode in nodes.
func New(ownNode node.Node, nodes *node.Registry, mc mainchain.Client, cache *abstractcache.Cache) *LocalStore {
	nodes.Put(ownNode)

	s := &LocalStore{
		ownNode:   ownNode,
		nodes:     nodes,
		chains:    make(map[node.ID]*chain.Chain),
		peerMeta:  make(map[node.ID]*metaknowledge.MetaKnowledge),
		unspent:   make(map[chain.SourceKey]chain.Transaction),
		consumed:  make(map[chain.SourceKey]bool),
		mainChain: mc,
		cache:     cache,
	}

	s.chains[ownNode.ID] = chain.NewChain(chain.NewBlock(0, ownNode.ID, chain.Hash{}, nil))

	return s
}

// SetTracker wires the external node-discovery collaborator. It is optional;
// without one, a node-table miss simply reports not-found.
func (s *LocalStore) SetTracker(t Tracker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker = t
}

// OwnNode returns the node this store represents.
func (s *LocalStore) OwnNode() node.Node {
	return s.ownNode
}

// OwnChain returns this node's own authoritative chain.
func (s *LocalStore) OwnChain() *chain.Chain {
	return s.chainFor(s.ownNode.ID)
}

// Chain implements proof.ChainSource: only chains this store already has
// something for are returned, never created.
func (s *LocalStore) Chain(owner node.ID) (*chain.Chain, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chains[owner]
	return c, ok
}

// ChainFor implements proof.Mirror: a mirror chain is created, seeded with
// genesis, the first time owner is referenced.
func (s *LocalStore) ChainFor(owner node.ID) *chain.Chain {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chainFor(owner)
}

func (s *LocalStore) chainFor(owner node.ID) *chain.Chain {
	c, ok := s.chains[owner]
	if !ok {
		c = chain.NewChain(chain.NewBlock(0, owner, chain.Hash{}, nil))
		s.chains[owner] = c
	}
	return c
}

// PublicKey implements proof.PublicKeys, consulting the node table and
// falling back to the tracker on a miss.
func (s *LocalStore) PublicKey(id node.ID) (ledgercrypto.PublicKey, bool) {
	if n, ok := s.nodes.Get(id); ok {
		return n.PublicKey, true
	}

	s.mu.Lock()
	tracker := s.tracker
	s.mu.Unlock()

	if tracker == nil {
		return ledgercrypto.PublicKey{}, false
	}

	nodes, err := tracker.UpdateNodes()
	if err != nil {
		return ledgercrypto.PublicKey{}, false
	}
	for _, n := range nodes {
		s.nodes.Put(n)
	}

	n, ok := nodes[id]
	return n.PublicKey, ok
}

// MarkConsumed implements proof.SpentSources.
func (s *LocalStore) MarkConsumed(src chain.SourceKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed[src] {
		return false
	}
	s.consumed[src] = true
	return true
}

// PeerMeta returns this store's meta-knowledge estimate for peer,
// creating an empty one on first use.
func (s *LocalStore) PeerMeta(peer node.ID) *metaknowledge.MetaKnowledge {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.peerMeta[peer]
	if !ok {
		m = metaknowledge.New()
		s.peerMeta[peer] = m
	}
	return m
}

// Nodes returns a snapshot of every node this store knows about, for admin
// inspection.
func (s *LocalStore) Nodes() map[node.ID]node.Node {
	return s.nodes.Copy()
}

// CacheHeight reports the abstract cache's current main chain height, for
// admin inspection.
func (s *LocalStore) CacheHeight() uint64 {
	return s.cache.CurrentHeight()
}

// Unspent returns a snapshot of the transactions this node has received
// and not yet spent.
func (s *LocalStore) Unspent() []chain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chain.Transaction, 0, len(s.unspent))
	for _, t := range s.unspent {
		out = append(out, t)
	}
	return out
}

// PrepareMint builds a genesis transaction crediting amount to this
// node's own unspent set, with no sender and no signature to verify.
// It is only meaningful for the node that owns the value being created;
// in this system that is every node, each minting into its own chain.
func (s *LocalStore) PrepareMint(amount uint64) chain.Transaction {
	s.mu.Lock()
	number := s.nextTxNumber
	s.nextTxNumber++
	s.mu.Unlock()

	tx := chain.Transaction{
		Number:     number,
		IsGenesis:  true,
		SenderID:   s.ownNode.ID,
		ReceiverID: s.ownNode.ID,
		Amount:     amount,
	}

	s.mu.Lock()
	s.unspent[tx.Key()] = tx
	s.mu.Unlock()

	return tx
}

// PrepareTransfer builds and signs a Transaction moving amount to
// receiverID, drawing sources greedily from this store's unspent set and
// consuming them. It does not place the transaction into a block; the
// caller still owns calling AppendOwnBlock and CommitOwnBlock.
func (s *LocalStore) PrepareTransfer(receiverID node.ID, amount uint64) (chain.Transaction, error) {
	if !s.ownNode.HasPrivateKey() {
		return chain.Transaction{}, fmt.Errorf("store: own node %d has no private key to sign a transfer", s.ownNode.ID)
	}

	s.mu.Lock()

	var sources []chain.SourceKey
	var total uint64
	for key, tx := range s.unspent {
		sources = append(sources, key)
		total += tx.Amount
		if total >= amount {
			break
		}
	}

	if total < amount {
		s.mu.Unlock()
		return chain.Transaction{}, fmt.Errorf("store: insufficient unspent balance: have %d, need %d", total, amount)
	}

	for _, key := range sources {
		delete(s.unspent, key)
	}

	number := s.nextTxNumber
	s.nextTxNumber++

	s.mu.Unlock()

	tx := chain.Transaction{
		Number:     number,
		SenderID:   s.ownNode.ID,
		ReceiverID: receiverID,
		Amount:     amount,
		Remainder:  total - amount,
		Sources:    sources,
	}
	tx.Signature = ledgercrypto.Sign(tx.CanonicalBytes(), s.ownNode.PrivateKey)

	return tx, nil
}

// AppendOwnBlock places txs into a new block on this node's own chain,
// stamping each transaction with the resulting block number first.
func (s *LocalStore) AppendOwnBlock(txs []chain.Transaction) (chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	own := s.chains[s.ownNode.ID]
	number := own.Height() + 1

	for i := range txs {
		txs[i].SetBlockNumber(number)
	}

	prev, ok := own.At(number - 1)
	if !ok {
		return chain.Block{}, fmt.Errorf("own chain missing predecessor block %d", number-1)
	}
	prevHash, err := (&prev).Hash()
	if err != nil {
		return chain.Block{}, err
	}

	b := chain.NewBlock(number, s.ownNode.ID, prevHash, txs)
	own.Append(b)

	return b, nil
}

// CommitOwnBlock signs and submits an abstract for b to the main chain. A
// failed commit is queued for retry at the next send opportunity, per the
// at-least-once commit policy; the failure is still returned, wrapped as a
// TransportError.
func (s *LocalStore) CommitOwnBlock(b chain.Block) error {
	if !s.ownNode.HasPrivateKey() {
		return fmt.Errorf("store: own node %d has no private key to sign an abstract", s.ownNode.ID)
	}

	hash, err := (&b).Hash()
	if err != nil {
		return err
	}

	abstract := chain.NewAbstract(s.ownNode.ID, b.Number, hash, s.ownNode.PrivateKey)

	if _, err := s.cache.Commit(abstract); err != nil {
		s.mu.Lock()
		s.pendingCommits = append(s.pendingCommits, abstract)
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ledgererr.TransportError, err)
	}

	s.ChainFor(s.ownNode.ID).MarkCommitted(b.Number)
	return nil
}

// RetryFailedCommits resubmits every abstract queued by a prior failed
// CommitOwnBlock, dropping each on success. Call it at the node's next
// send opportunity, per spec's at-least-once commit policy.
func (s *LocalStore) RetryFailedCommits() {
	s.mu.Lock()
	pending := s.pendingCommits
	s.pendingCommits = nil
	s.mu.Unlock()

	var stillFailing []chain.Abstract
	for _, a := range pending {
		if _, err := s.cache.Commit(a); err != nil {
			stillFailing = append(stillFailing, a)
			continue
		}
		s.ChainFor(a.OwnerID).MarkCommitted(a.BlockNumber)
	}

	if len(stillFailing) > 0 {
		s.mu.Lock()
		s.pendingCommits = append(s.pendingCommits, stillFailing...)
		s.mu.Unlock()
	}
}

// ConstructProof builds the minimal proof letting receiverID accept tx,
// pruned against this store's current meta-knowledge estimate for
// receiverID.
func (s *LocalStore) ConstructProof(tx chain.Transaction, receiverID node.ID) (proof.Proof, error) {
	constructor := proof.NewConstructor(s)
	return constructor.Construct(tx, s.ownNode.ID, receiverID, s.PeerMeta(receiverID))
}

// NoteSent records that receiverID was just handed pf, so future proofs to
// it can be pruned against what it now has.
func (s *LocalStore) NoteSent(receiverID node.ID, pf proof.Proof) {
	s.PeerMeta(receiverID).AdvanceFromChainUpdates(pf.ChainUpdates)
}

// ReceiveTransaction verifies an incoming (tx, proof) from senderID and, on
// success, records the sender's now-demonstrated knowledge and, if this
// node is the transaction's receiver, adds it to the unspent set.
func (s *LocalStore) ReceiveTransaction(tx chain.Transaction, pf proof.Proof, senderID node.ID) error {
	verifier := proof.NewVerifier(s, s.cache, s, s)

	if err := verifier.Verify(tx, pf, s.ownNode.ID); err != nil {
		return err
	}

	s.PeerMeta(senderID).AdvanceFromChainUpdates(pf.ChainUpdates)

	if tx.Amount > 0 && tx.ReceiverID == s.ownNode.ID {
		s.mu.Lock()
		s.unspent[tx.Key()] = tx
		s.mu.Unlock()
	}

	return nil
}
