// Package node provides the Node identity type and a process-wide registry
// keyed by node id. Blocks and transactions reference nodes by id rather
// than by pointer, which breaks the Node ↔ Chain ↔ Block ↔ Transaction
// reference cycle described by the source material: a transaction's
// sources hold (ownerId, transactionNumber) pairs resolved lazily against
// this registry instead of embedding a *Node.
package node

import (
	"fmt"
	"sync"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
)

// ID identifies a Node. Node equality is by ID, never by pointer identity.
type ID uint32

// Genesis is the reserved id of the shared genesis node: the implicit
// sender (⊥) of every mint transaction.
const Genesis ID = 0

// Node is a participant in the ledger. Two handles with the same ID denote
// the same logical node.
type Node struct {
	ID        ID
	Address   string
	PublicKey ledgercrypto.PublicKey

	// PrivateKey is populated only for the local node; it is the zero value
	// for every remote peer.
	PrivateKey ledgercrypto.PrivateKey
	hasKey     bool
}

// New constructs a remote node handle (no private key).
func New(id ID, address string, pub ledgercrypto.PublicKey) Node {
	return Node{ID: id, Address: address, PublicKey: pub}
}

// NewLocal constructs a node handle for the local process, carrying its own
// private key.
func NewLocal(id ID, address string, pub ledgercrypto.PublicKey, priv ledgercrypto.PrivateKey) Node {
	return Node{ID: id, Address: address, PublicKey: pub, PrivateKey: priv, hasKey: true}
}

// HasPrivateKey reports whether this handle can sign on behalf of the node.
func (n Node) HasPrivateKey() bool {
	return n.hasKey
}

// Equal reports whether two node handles denote the same logical node.
func (n Node) Equal(other Node) bool {
	return n.ID == other.ID
}

// String implements fmt.Stringer for logging.
func (n Node) String() string {
	return fmt.Sprintf("node[%d]@%s", n.ID, n.Address)
}

// =============================================================================

// Registry is a process-wide, concurrency-safe table of known nodes, keyed
// by id. It resolves the cyclic object graph: a Transaction's sources carry
// ids, never pointers, and are looked up here when needed.
type Registry struct {
	mu   sync.RWMutex
	byID map[ID]Node
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]Node)}
}

// Put inserts or replaces the handle for a node id.
func (r *Registry) Put(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[n.ID] = n
}

// Get returns the node for id and whether it was found.
func (r *Registry) Get(id ID) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	return n, ok
}

// Copy returns a snapshot of every registered node.
func (r *Registry) Copy() map[ID]Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cpy := make(map[ID]Node, len(r.byID))
	for id, n := range r.byID {
		cpy[id] = n
	}
	return cpy
}
