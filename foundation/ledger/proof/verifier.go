package proof

import (
	"fmt"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgererr"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Mirror is the receiver's local, mutable view of chains owned by other
// nodes. Structural verification appends unknown blocks to it and checks
// already-known blocks for an identical hash.
type Mirror interface {
	// ChainFor returns the mirror chain for owner, creating one seeded
	// with the shared genesis block if this is the first time owner is
	// seen.
	ChainFor(owner node.ID) *chain.Chain
}

// Finality is the subset of the abstract cache the verifier needs: a pure
// presence check, plus a way to ask for a refresh when a block looks
// unfinalized and retry once more before giving up.
type Finality interface {
	IsPresent(blockHash chain.Hash) bool
	CurrentHeight() uint64
	NoteNewHeight(h uint64)
}

// PublicKeys resolves a node id to the public key it signs with.
type PublicKeys interface {
	PublicKey(id node.ID) (ledgercrypto.PublicKey, bool)
}

// SpentSources tracks which sources have already been consumed by a
// transaction this receiver accepted, guarding against a sender replaying
// the same source to the same receiver.
type SpentSources interface {
	// MarkConsumed atomically checks-and-marks src as spent. It reports
	// false if src had already been marked, in which case the caller must
	// reject the transaction.
	MarkConsumed(src chain.SourceKey) bool
}

// Verifier validates a received (Transaction, Proof) pair against a
// receiver's local state, in the fixed order the source's acceptance
// procedure requires: structural, commitment, signature, sources,
// conservation, double-spend.
type Verifier struct {
	mirror   Mirror
	finality Finality
	keys     PublicKeys
	spent    SpentSources
}

// NewVerifier builds a Verifier over the given collaborators.
func NewVerifier(mirror Mirror, finality Finality, keys PublicKeys, spent SpentSources) *Verifier {
	return &Verifier{mirror: mirror, finality: finality, keys: keys, spent: spent}
}

// Verify runs every check and, only on success, applies the proof's chain
// updates to the mirror and marks the transaction's sources consumed.
// receiverID names the node doing the verifying, needed to know which
// chain update entry (if any) is the receiver's own and can be skipped.
func (v *Verifier) Verify(tx chain.Transaction, pf Proof, receiverID node.ID) error {
	if err := v.verifyStructural(pf, receiverID); err != nil {
		return err
	}

	if err := v.verifyCommitment(pf, receiverID); err != nil {
		return err
	}

	if err := v.verifySignature(tx); err != nil {
		return err
	}

	if err := v.verifySources(tx, pf, receiverID); err != nil {
		return err
	}

	if err := v.verifyConservation(tx, pf, receiverID); err != nil {
		return err
	}

	if err := v.verifyAndMarkDoubleSpend(tx); err != nil {
		return err
	}

	return nil
}

// verifyStructural appends every unknown block in the proof to the local
// mirror, in order, and confirms already-known blocks are byte-identical
// (same hash) to what the mirror already holds. The receiver's own chain
// update entry, if present, is skipped: a node never needs to be told
// about itself.
func (v *Verifier) verifyStructural(pf Proof, receiverID node.ID) error {
	for owner, blocks := range pf.ChainUpdates {
		if owner == receiverID {
			continue
		}

		mirror := v.mirror.ChainFor(owner)

		for _, b := range blocks {
			if existing, ok := mirror.At(b.Number); ok {
				existingHash, err := (&existing).Hash()
				if err != nil {
					return err
				}
				newHash, err := (&b).Hash()
				if err != nil {
					return err
				}
				if existingHash != newHash {
					return fmt.Errorf("owner %d block %d: mismatched hash: %w", owner, b.Number, ledgererr.MissingBlock)
				}
				continue
			}

			if b.Number != mirror.Height()+1 {
				return fmt.Errorf("owner %d block %d: not contiguous with height %d: %w", owner, b.Number, mirror.Height(), ledgererr.MissingBlock)
			}

			mirror.Append(b)
		}
	}

	return nil
}

// verifyCommitment requires the last block of every chain update entry to
// be present in the abstract cache, refreshing the cache to the main
// chain's latest height once before giving up. Once confirmed, every
// block in that entry is marked committed on the mirror — the proof was
// constructed never to send past a node's own committed boundary, so the
// whole delivered run is finalized along with its last block.
func (v *Verifier) verifyCommitment(pf Proof, receiverID node.ID) error {
	for owner, blocks := range pf.ChainUpdates {
		if owner == receiverID || len(blocks) == 0 {
			continue
		}

		last := blocks[len(blocks)-1]
		hash, err := (&last).Hash()
		if err != nil {
			return err
		}

		if !v.finality.IsPresent(hash) {
			v.finality.NoteNewHeight(v.finality.CurrentHeight() + 1)

			if !v.finality.IsPresent(hash) {
				return fmt.Errorf("owner %d block %d: %w", owner, last.Number, ledgererr.NotFinalized)
			}
		}

		mirror := v.mirror.ChainFor(owner)
		for _, b := range blocks {
			mirror.MarkCommitted(b.Number)
		}
	}

	return nil
}

// verifySignature checks the transaction's Ed25519 signature against its
// sender's registered public key.
func (v *Verifier) verifySignature(tx chain.Transaction) error {
	if tx.IsGenesis {
		return nil
	}

	pub, ok := v.keys.PublicKey(tx.SenderID)
	if !ok {
		return fmt.Errorf("sender %d: %w", tx.SenderID, ledgererr.MissingBlock)
	}

	if !ledgercrypto.Verify(tx.CanonicalBytes(), tx.Signature, pub) {
		return ledgererr.InvalidSignature
	}

	return nil
}

// sourceChainFor returns the chain a source should be resolved against:
// the receiver's own chain if the receiver is the source's owner,
// otherwise that owner's mirror.
func (v *Verifier) sourceChainFor(owner, receiverID node.ID) *chain.Chain {
	if owner == receiverID {
		return v.mirror.ChainFor(receiverID)
	}
	return v.mirror.ChainFor(owner)
}

// verifySources confirms every source transaction is locatable by its
// (senderId, transaction number) identity and that the block containing it
// is committed. Sources owned by the receiver itself are located in the
// receiver's own chain rather than the mirror.
func (v *Verifier) verifySources(tx chain.Transaction, pf Proof, receiverID node.ID) error {
	for _, s := range tx.Sources {
		c := v.sourceChainFor(s.SenderID, receiverID)

		_, b, ok := c.Find(s)
		if !ok {
			return fmt.Errorf("source %s: %w", s, ledgererr.MissingBlock)
		}

		if !c.IsCommitted(b.Number) {
			return fmt.Errorf("source %s: %w", s, ledgererr.NotFinalized)
		}
	}

	return nil
}

// verifyConservation requires the sum of source amounts to equal
// amount+remainder, and every source's original receiver to be the
// transaction's sender — i.e. the sender actually owns what it is
// spending. Genesis transactions mint value and have no sources to check.
func (v *Verifier) verifyConservation(tx chain.Transaction, pf Proof, receiverID node.ID) error {
	if tx.IsGenesis {
		return nil
	}

	var total uint64
	for _, s := range tx.Sources {
		c := v.sourceChainFor(s.SenderID, receiverID)

		srcTx, _, ok := c.Find(s)
		if !ok {
			return fmt.Errorf("source %s: %w", s, ledgererr.MissingBlock)
		}

		if srcTx.ReceiverID != tx.SenderID {
			return fmt.Errorf("source %s: not owned by sender: %w", s, ledgererr.ConservationViolation)
		}

		total += srcTx.Amount
	}

	if total != tx.Amount+tx.Remainder {
		return ledgererr.ConservationViolation
	}

	return nil
}

// verifyAndMarkDoubleSpend rejects a transaction that reuses a source
// already consumed by a prior transaction this receiver accepted.
func (v *Verifier) verifyAndMarkDoubleSpend(tx chain.Transaction) error {
	for _, s := range tx.Sources {
		if !v.spent.MarkConsumed(s) {
			return ledgererr.DoubleSpend
		}
	}
	return nil
}
