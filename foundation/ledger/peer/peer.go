// Package peer maintains knowledge of the other nodes in the network: who
// they are, where to reach them, and the wire connection used to exchange
// transactions and proofs with them.
package peer

import (
	"sync"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Peer identifies a remote node by id and the address its communication
// server listens on.
type Peer struct {
	ID      node.ID
	Address string
}

// New constructs a Peer value.
func New(id node.ID, address string) Peer {
	return Peer{ID: id, Address: address}
}

// Match reports whether id identifies this peer, used to keep a node from
// adding itself to its own peer set.
func (p Peer) Match(id node.ID) bool {
	return p.ID == id
}

// =============================================================================

// Set is a concurrency-safe collection of known peers, keyed by id.
type Set struct {
	mu  sync.RWMutex
	set map[node.ID]Peer
}

// NewSet constructs an empty peer set.
func NewSet() *Set {
	return &Set{set: make(map[node.ID]Peer)}
}

// Add inserts peer, reporting whether it was new.
func (s *Set) Add(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[p.ID]; exists {
		return false
	}
	s.set[p.ID] = p
	return true
}

// Remove drops id from the set.
func (s *Set) Remove(id node.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, id)
}

// Get returns the peer for id.
func (s *Set) Get(id node.ID) (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.set[id]
	return p, ok
}

// Copy returns every known peer other than self.
func (s *Set) Copy(self node.ID) []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Peer
	for _, p := range s.set {
		if !p.Match(self) {
			out = append(out, p)
		}
	}
	return out
}

// Status is what a peer reports about itself on a status query: its
// node id and the peers it, in turn, already knows about.
type Status struct {
	ID         node.ID `json:"id"`
	KnownPeers []Peer  `json:"known_peers"`
}
