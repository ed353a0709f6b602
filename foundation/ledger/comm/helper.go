// Package comm implements the send and receive orchestration a node's
// communication layer runs on top of its LocalStore: constructing and
// transmitting a proof on send, verifying and applying one on receive, and
// the background worker that keeps peer discovery, outbound sharing, and
// failed-commit retries running.
package comm

import (
	"fmt"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/proof"
)

// Store is the subset of LocalStore the communication layer drives: failed
// commit retries, proof construction and note-keeping on send, verification
// and application on receive.
type Store interface {
	RetryFailedCommits()
	ConstructProof(tx chain.Transaction, receiverID node.ID) (proof.Proof, error)
	NoteSent(receiverID node.ID, pf proof.Proof)
	ReceiveTransaction(tx chain.Transaction, pf proof.Proof, senderID node.ID) error
	OwnNode() node.Node
}

// Helper pairs a Store with the envelope framing peer uses to talk about
// proofs on the wire, keeping both sides of the protocol in one place.
type Helper struct {
	store Store
}

// NewHelper builds a Helper bound to store.
func NewHelper(store Store) *Helper {
	return &Helper{store: store}
}

// Send first resubmits any abstracts whose main-chain commit failed earlier,
// then constructs the minimal proof for tx addressed to receiverID, records
// that receiverID now knows what the proof contains, and returns the
// envelope ready to transmit over a peer.Conn.
func (h *Helper) Send(receiverID node.ID, tx chain.Transaction) (peer.Envelope, error) {
	h.store.RetryFailedCommits()

	pf, err := h.store.ConstructProof(tx, receiverID)
	if err != nil {
		return peer.Envelope{}, fmt.Errorf("constructing proof for %d: %w", receiverID, err)
	}

	h.store.NoteSent(receiverID, pf)

	return peer.NewEnvelope(h.store.OwnNode().ID, tx, pf), nil
}

// Receive verifies env's transaction and proof and, on success, applies
// them to the store.
func (h *Helper) Receive(env peer.Envelope) error {
	tx, pf := env.Decode()

	if err := h.store.ReceiveTransaction(tx, pf, env.SenderID); err != nil {
		return fmt.Errorf("receiving transaction from %d: %w", env.SenderID, err)
	}

	return nil
}
