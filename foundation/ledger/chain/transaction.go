package chain

import (
	"fmt"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// SourceKey identifies a Transaction by (sender id, number), the key used
// for equality, maps and the double-spend index. It is never compared by
// pointer identity.
type SourceKey struct {
	SenderID node.ID
	Number   uint32
}

// String implements fmt.Stringer for logging.
func (k SourceKey) String() string {
	return fmt.Sprintf("%d:%d", k.SenderID, k.Number)
}

// Transaction moves value from a sender to a receiver, consuming prior
// transactions as sources. IsGenesis true represents a mint with no real
// sender (⊥); see the field comment for what SenderID holds then.
type Transaction struct {
	Number uint32

	// IsGenesis marks a mint: value created with no real sender. SenderID
	// is still set to the id of the chain this transaction was recorded
	// on (so later sources can resolve it), but CanonicalBytes always
	// signs a zero sender field for a genesis transaction, since mints
	// carry no signature to verify.
	IsGenesis  bool
	SenderID   node.ID
	ReceiverID node.ID
	Amount    uint64
	Remainder uint64
	Sources   []SourceKey // insertion order matters, see CanonicalBytes
	Signature ledgercrypto.Signature

	// BlockNumber is set once the transaction has been placed in a block.
	// While hasBlockNumber is false the transaction has not yet been
	// included and BlockNumber carries no meaning.
	BlockNumber    uint32
	hasBlockNumber bool
}

// Key returns this transaction's identity key.
func (t Transaction) Key() SourceKey {
	return SourceKey{SenderID: t.SenderID, Number: t.Number}
}

// SetBlockNumber records the block this transaction was placed into.
// Transactions are immutable once included in a block; call this exactly
// once, before the transaction is shared with anyone.
func (t *Transaction) SetBlockNumber(n uint32) {
	t.BlockNumber = n
	t.hasBlockNumber = true
}

// HasBlockNumber reports whether this transaction has been placed in a block.
func (t Transaction) HasBlockNumber() bool {
	return t.hasBlockNumber
}

// CanonicalBytes returns the exact byte layout signed by the sender, per
// the wire format fixed in spec.md §6.
func (t Transaction) CanonicalBytes() []byte {
	senderID := uint32(0)
	if !t.IsGenesis {
		senderID = uint32(t.SenderID)
	}

	sources := make([]ledgercrypto.SourceRef, len(t.Sources))
	for i, s := range t.Sources {
		sources[i] = ledgercrypto.SourceRef{SenderID: uint32(s.SenderID), Number: s.Number}
	}

	return ledgercrypto.CanonicalTransactionBytes(senderID, uint32(t.ReceiverID), t.Number, t.Amount, t.Remainder, sources)
}

// Hash returns the SHA-256 hash of the transaction's canonical bytes
// together with its signature, used as a merkle leaf when hashing the
// block that contains it.
func (t Transaction) Hash() ([]byte, error) {
	data := append(t.CanonicalBytes(), t.Signature[:]...)
	h := sha256Sum(data)
	return h[:], nil
}

// Equals implements merkle.Hashable: two transactions are equal if they
// have the same identity and signature.
func (t Transaction) Equals(other Transaction) bool {
	return t.Key() == other.Key() && t.Signature == other.Signature
}
