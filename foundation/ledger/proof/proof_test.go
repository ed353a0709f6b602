package proof_test

import (
	"testing"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgererr"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/metaknowledge"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/proof"
)

// chainSet is a test double satisfying both proof.ChainSource (sender side)
// and proof.Mirror (receiver side): a plain map of owner to chain, each
// seeded with its own genesis block on first use.
type chainSet struct {
	chains map[node.ID]*chain.Chain
}

func newChainSet() *chainSet {
	return &chainSet{chains: make(map[node.ID]*chain.Chain)}
}

func (cs *chainSet) Chain(owner node.ID) (*chain.Chain, bool) {
	c, ok := cs.chains[owner]
	return c, ok
}

func (cs *chainSet) ChainFor(owner node.ID) *chain.Chain {
	c, ok := cs.chains[owner]
	if !ok {
		c = chain.NewChain(chain.NewBlock(0, owner, chain.Hash{}, nil))
		cs.chains[owner] = c
	}
	return c
}

// fakeFinality is a minimal Finality double backed by a fixed hash set;
// NoteNewHeight is a no-op since tests seed everything up front.
type fakeFinality struct {
	present map[chain.Hash]bool
}

func newFakeFinality() *fakeFinality {
	return &fakeFinality{present: make(map[chain.Hash]bool)}
}

func (f *fakeFinality) IsPresent(h chain.Hash) bool { return f.present[h] }
func (f *fakeFinality) CurrentHeight() uint64        { return 0 }
func (f *fakeFinality) NoteNewHeight(uint64)         {}

type fakeKeys struct {
	pub map[node.ID]ledgercrypto.PublicKey
}

func (k *fakeKeys) PublicKey(id node.ID) (ledgercrypto.PublicKey, bool) {
	p, ok := k.pub[id]
	return p, ok
}

type fakeSpentSources struct {
	spent map[chain.SourceKey]bool
}

func newFakeSpentSources() *fakeSpentSources {
	return &fakeSpentSources{spent: make(map[chain.SourceKey]bool)}
}

func (s *fakeSpentSources) MarkConsumed(src chain.SourceKey) bool {
	if s.spent[src] {
		return false
	}
	s.spent[src] = true
	return true
}

// appendAndHash appends a block built from txs to c's owner chain,
// returning the block's hash for use as the next block's previous hash.
func appendAndHash(t *testing.T, c *chain.Chain, owner node.ID, number uint32, prev chain.Hash, txs []chain.Transaction) chain.Hash {
	t.Helper()

	b := chain.NewBlock(number, owner, prev, txs)
	h, err := b.Hash()
	if err != nil {
		t.Fatalf("should be able to hash block: %s", err)
	}
	c.Append(b)
	return h
}

func Test_MintThenSpendRoundTrip(t *testing.T) {
	const (
		nodeA = node.ID(1)
		nodeB = node.ID(2)
	)

	pubA, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}

	chains := newChainSet()
	chainA := chains.ChainFor(nodeA)

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA, ReceiverID: nodeA, Amount: 100}
	mint.SetBlockNumber(1)
	prev := appendAndHash(t, chainA, nodeA, 1, chain.Hash{}, []chain.Transaction{mint})
	chainA.MarkCommitted(1)

	spend := chain.Transaction{
		Number:     1,
		SenderID:   nodeA,
		ReceiverID: nodeB,
		Amount:     40,
		Remainder:  60,
		Sources:    []chain.SourceKey{mint.Key()},
	}
	spend.Signature = ledgercrypto.Sign(spend.CanonicalBytes(), privA)
	spend.SetBlockNumber(2)
	block2Hash := appendAndHash(t, chainA, nodeA, 2, prev, []chain.Transaction{spend})
	chainA.MarkCommitted(2)

	receiverMeta := metaknowledge.New()

	constructor := proof.NewConstructor(chains)
	pf, err := constructor.Construct(spend, nodeA, nodeB, receiverMeta)
	if err != nil {
		t.Fatalf("should be able to construct proof: %s", err)
	}

	blocks, ok := pf.ChainUpdates[nodeA]
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected 2 blocks of A's chain in the proof, got %v", pf.ChainUpdates)
	}

	finality := newFakeFinality()
	finality.present[block2Hash] = true

	keys := &fakeKeys{pub: map[node.ID]ledgercrypto.PublicKey{nodeA: pubA}}
	spentSources := newFakeSpentSources()

	receiverChains := newChainSet()
	verifier := proof.NewVerifier(receiverChains, finality, keys, spentSources)

	if err := verifier.Verify(pf.Transaction, pf, nodeB); err != nil {
		t.Fatalf("expected verification to succeed, got %s", err)
	}

	mirrorA := receiverChains.ChainFor(nodeA)
	if mirrorA.Height() != 2 {
		t.Fatalf("expected mirror of A to reach height 2, got %d", mirrorA.Height())
	}
}

func Test_PrunedProofOmitsAlreadyKnownBlocks(t *testing.T) {
	const (
		nodeA = node.ID(1)
		nodeB = node.ID(2)
	)

	_, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}

	chains := newChainSet()
	chainA := chains.ChainFor(nodeA)

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA, ReceiverID: nodeA, Amount: 100}
	mint.SetBlockNumber(1)
	prev := appendAndHash(t, chainA, nodeA, 1, chain.Hash{}, []chain.Transaction{mint})
	chainA.MarkCommitted(1)

	spend := chain.Transaction{
		Number: 1, SenderID: nodeA, ReceiverID: nodeB, Amount: 40, Remainder: 60,
		Sources: []chain.SourceKey{mint.Key()},
	}
	spend.Signature = ledgercrypto.Sign(spend.CanonicalBytes(), privA)
	spend.SetBlockNumber(2)
	appendAndHash(t, chainA, nodeA, 2, prev, []chain.Transaction{spend})
	chainA.MarkCommitted(2)

	alreadyKnowsA := metaknowledge.New()
	alreadyKnowsA.Advance(nodeA, 2)

	constructor := proof.NewConstructor(chains)
	pf, err := constructor.Construct(spend, nodeA, nodeB, alreadyKnowsA)
	if err != nil {
		t.Fatalf("should be able to construct proof: %s", err)
	}

	if len(pf.ChainUpdates) != 0 {
		t.Fatalf("expected no chain updates when receiver already has everything, got %v", pf.ChainUpdates)
	}
}

func Test_ConservationViolationRejected(t *testing.T) {
	const (
		nodeA = node.ID(1)
		nodeB = node.ID(2)
	)

	pubA, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}

	chains := newChainSet()
	chainA := chains.ChainFor(nodeA)

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA, ReceiverID: nodeA, Amount: 100}
	mint.SetBlockNumber(1)
	prev := appendAndHash(t, chainA, nodeA, 1, chain.Hash{}, []chain.Transaction{mint})
	chainA.MarkCommitted(1)

	// Forged: amount+remainder (110) doesn't match the source's amount (100).
	forged := chain.Transaction{
		Number: 1, SenderID: nodeA, ReceiverID: nodeB, Amount: 50, Remainder: 60,
		Sources: []chain.SourceKey{mint.Key()},
	}
	forged.Signature = ledgercrypto.Sign(forged.CanonicalBytes(), privA)
	forged.SetBlockNumber(2)
	block2Hash := appendAndHash(t, chainA, nodeA, 2, prev, []chain.Transaction{forged})
	chainA.MarkCommitted(2)

	pf, err := proof.NewConstructor(chains).Construct(forged, nodeA, nodeB, metaknowledge.New())
	if err != nil {
		t.Fatalf("should be able to construct proof: %s", err)
	}

	finality := newFakeFinality()
	finality.present[block2Hash] = true
	keys := &fakeKeys{pub: map[node.ID]ledgercrypto.PublicKey{nodeA: pubA}}

	verifier := proof.NewVerifier(newChainSet(), finality, keys, newFakeSpentSources())
	if err := verifier.Verify(pf.Transaction, pf, nodeB); err != ledgererr.ConservationViolation {
		t.Fatalf("expected ConservationViolation, got %v", err)
	}
}

func Test_DoubleSpendRejectedOnReplay(t *testing.T) {
	const (
		nodeA = node.ID(1)
		nodeB = node.ID(2)
	)

	pubA, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}

	chains := newChainSet()
	chainA := chains.ChainFor(nodeA)

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA, ReceiverID: nodeA, Amount: 100}
	mint.SetBlockNumber(1)
	prev := appendAndHash(t, chainA, nodeA, 1, chain.Hash{}, []chain.Transaction{mint})
	chainA.MarkCommitted(1)

	spend := chain.Transaction{
		Number: 1, SenderID: nodeA, ReceiverID: nodeB, Amount: 40, Remainder: 60,
		Sources: []chain.SourceKey{mint.Key()},
	}
	spend.Signature = ledgercrypto.Sign(spend.CanonicalBytes(), privA)
	spend.SetBlockNumber(2)
	block2Hash := appendAndHash(t, chainA, nodeA, 2, prev, []chain.Transaction{spend})
	chainA.MarkCommitted(2)

	pf, err := proof.NewConstructor(chains).Construct(spend, nodeA, nodeB, metaknowledge.New())
	if err != nil {
		t.Fatalf("should be able to construct proof: %s", err)
	}

	finality := newFakeFinality()
	finality.present[block2Hash] = true
	keys := &fakeKeys{pub: map[node.ID]ledgercrypto.PublicKey{nodeA: pubA}}
	spentSources := newFakeSpentSources()

	verifier := proof.NewVerifier(newChainSet(), finality, keys, spentSources)
	if err := verifier.Verify(pf.Transaction, pf, nodeB); err != nil {
		t.Fatalf("expected first delivery to succeed, got %s", err)
	}

	verifierAgain := proof.NewVerifier(newChainSet(), finality, keys, spentSources)
	if err := verifierAgain.Verify(pf.Transaction, pf, nodeB); err != ledgererr.DoubleSpend {
		t.Fatalf("expected DoubleSpend on replay, got %v", err)
	}
}
