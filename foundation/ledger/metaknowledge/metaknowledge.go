// Package metaknowledge tracks, per remote peer, the highest block number
// of each other node's chain that the peer is known to already possess.
// It is the ratchet ProofConstructor prunes against and ProofVerifier
// advances on receipt.
package metaknowledge

import (
	"sync"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// unknown is the default height for a node we've never advanced:
// "knows nothing beyond genesis".
const unknown = -1

// MetaKnowledge is one peer's view of what it has shown to each other node.
// Entries are created lazily on first Advance; an unseen node simply reads
// back unknown without being materialized in the map, matching the
// source's lazy per-peer bootstrap.
type MetaKnowledge struct {
	mu     sync.RWMutex
	height map[node.ID]int64
}

// New constructs an empty MetaKnowledge.
func New() *MetaKnowledge {
	return &MetaKnowledge{height: make(map[node.ID]int64)}
}

// Get returns the highest known block number for owner, or -1 if nothing
// is known about owner yet.
func (m *MetaKnowledge) Get(owner node.ID) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.height[owner]
	if !ok {
		return unknown
	}
	return h
}

// Snapshot returns a copy of every height this peer is known to hold,
// for admin inspection.
func (m *MetaKnowledge) Snapshot() map[node.ID]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cpy := make(map[node.ID]int64, len(m.height))
	for id, h := range m.height {
		cpy[id] = h
	}
	return cpy
}

// Advance sets the known height for peer to max(old, newHeight). Monotone:
// a call with a lower height than what is already recorded is a no-op.
func (m *MetaKnowledge) Advance(peer node.ID, newHeight uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := int64(newHeight)
	if old, ok := m.height[peer]; ok && old >= h {
		return
	}
	m.height[peer] = h
}

// AdvanceFromBlocks advances owner's height to the number of the last
// block in blocks, if blocks is non-empty.
func (m *MetaKnowledge) AdvanceFromBlocks(owner node.ID, blocks []chain.Block) {
	if len(blocks) == 0 {
		return
	}
	m.Advance(owner, blocks[len(blocks)-1].Number)
}

// AdvanceFromChainUpdates advances every owner named in a proof's
// chainUpdates map to the number of the last block sent for that owner.
func (m *MetaKnowledge) AdvanceFromChainUpdates(updates map[node.ID][]chain.Block) {
	for owner, blocks := range updates {
		m.AdvanceFromBlocks(owner, blocks)
	}
}

// BlocksToSend returns owner.chain[knownHeight+1 .. uptoInclusive], the
// slice of owner's chain this peer still needs to see. Returns nil if
// uptoInclusive is already covered by what's known.
func (m *MetaKnowledge) BlocksToSend(owner node.ID, ownerChain *chain.Chain, uptoInclusive uint32) []chain.Block {
	known := m.Get(owner)
	if known < 0 {
		// The genesis block is a shared reference, identical and already
		// known to every node; it is never part of a chain update.
		known = 0
	}

	if int64(uptoInclusive) <= known {
		return nil
	}

	from := uint32(known + 1)

	return ownerChain.Slice(from, uptoInclusive)
}
