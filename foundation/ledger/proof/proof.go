// Package proof builds and verifies the minimal evidence a receiver needs
// to accept a transaction it did not itself witness: a pruned slice of
// each upstream owner's chain, just enough to re-derive provenance back to
// blocks the receiver already trusts or already holds.
package proof

import (
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Proof accompanies a Transaction so its receiver can validate provenance
// without having previously seen every block involved. ChainUpdates maps
// an owner node to the ordered, contiguous run of that owner's blocks the
// receiver is being handed for the first time.
type Proof struct {
	Transaction  chain.Transaction
	ChainUpdates map[node.ID][]chain.Block
}

// ChainSource resolves an owner's chain during construction. The sender
// side of a proof exchange always has every chain it might need to walk;
// construction never creates a chain, only reads one.
type ChainSource interface {
	Chain(owner node.ID) (*chain.Chain, bool)
}
