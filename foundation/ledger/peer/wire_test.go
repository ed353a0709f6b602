package peer_test

import (
	"encoding/json"
	"testing"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/proof"
)

func Test_EnvelopeRoundTripsThroughJSON(t *testing.T) {
	const (
		nodeA = node.ID(1)
		nodeB = node.ID(2)
	)

	_, privA, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate key: %s", err)
	}

	mint := chain.Transaction{Number: 0, IsGenesis: true, SenderID: nodeA, ReceiverID: nodeA, Amount: 100}
	mint.SetBlockNumber(1)

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

	block1 := chain.NewBlock(1, nodeA, chain.Hash{}, []chain.Transaction{mint})
	block2 := chain.NewBlock(2, nodeA, chain.Hash{}, []chain.Transaction{spend})

	pf := proof.Proof{
		Transaction:  spend,
		ChainUpdates: map[node.ID][]chain.Block{nodeA: {block1, block2}},
	}

	env := peer.NewEnvelope(nodeA, spend, pf)
	if env.ID == "" {
		t.Fatalf("expected a correlation id to be stamped")
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("should be able to marshal envelope: %s", err)
	}

	var decoded peer.Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("should be able to unmarshal envelope: %s", err)
	}

	gotTx, gotProof := decoded.Decode()

	if gotTx.Key() != spend.Key() {
		t.Fatalf("expected transaction key to round-trip, got %v want %v", gotTx.Key(), spend.Key())
	}
	if gotTx.Signature != spend.Signature {
		t.Fatalf("expected signature to round-trip")
	}
	if gotTx.Amount != spend.Amount || gotTx.Remainder != spend.Remainder {
		t.Fatalf("expected amount/remainder to round-trip")
	}

	blocks, ok := gotProof.ChainUpdates[nodeA]
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected 2 chain-update blocks for nodeA to round-trip, got %v", gotProof.ChainUpdates)
	}
	if blocks[0].Number != 1 || blocks[1].Number != 2 {
		t.Fatalf("expected block numbers to round-trip in order, got %d, %d", blocks[0].Number, blocks[1].Number)
	}
	if len(blocks[1].Transactions) != 1 || blocks[1].Transactions[0].Key() != spend.Key() {
		t.Fatalf("expected block 2's transaction to round-trip")
	}
}
