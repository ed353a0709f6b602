// Package mainchain declares the boundary between the ledger core and the
// shared BFT main chain: a client interface for committing block abstracts
// and querying which ones have landed, plus a couple of concrete
// implementations. The main chain's own consensus is out of scope; only
// the shape a caller needs to talk to it lives here.
package mainchain

import (
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Client is how the ledger core talks to the main chain: commit an
// abstract, ask what height it has reached, and pull the abstracts
// committed at a given height.
type Client interface {
	// Status reports the highest height the main chain has finalized.
	Status() (Status, error)

	// Query returns every abstract committed at height, in commit order.
	// An empty, non-error result means nothing has landed at that height yet.
	Query(height uint64) ([]chain.Abstract, error)

	// Commit submits an abstract for inclusion. It returns the abstract's
	// block hash once the main chain has accepted it.
	Commit(abstract chain.Abstract) (chain.Hash, error)
}

// Status is the main chain's self-reported state.
type Status struct {
	Height uint64
}

// abstractKey identifies one committed abstract for deduplication.
type abstractKey struct {
	owner  node.ID
	number uint32
}
