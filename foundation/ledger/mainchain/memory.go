package mainchain

import (
	"sync"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
)

// Memory is an in-process Client used by tests and local development. It
// commits abstracts synchronously and buckets them by height, exactly like
// the real main chain's query semantics, without any actual consensus.
type Memory struct {
	mu       sync.Mutex
	byHeight map[uint64][]chain.Abstract
	seen     map[abstractKey]bool
	height   uint64
}

// NewMemory constructs an empty in-memory main chain starting at height 0.
func NewMemory() *Memory {
	return &Memory{
		byHeight: make(map[uint64][]chain.Abstract),
		seen:     make(map[abstractKey]bool),
	}
}

// Status implements Client.
func (m *Memory) Status() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{Height: m.height}, nil
}

// Query implements Client.
func (m *Memory) Query(height uint64) ([]chain.Abstract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]chain.Abstract, len(m.byHeight[height]))
	copy(out, m.byHeight[height])
	return out, nil
}

// Commit implements Client. Each commit advances the chain by one height;
// a resubmitted abstract for an (owner, blockNumber) already seen is a
// no-op that still reports the resubmitted abstract's block hash.
func (m *Memory) Commit(abstract chain.Abstract) (chain.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := abstractKey{owner: abstract.OwnerID, number: abstract.BlockNumber}
	if !m.seen[key] {
		m.seen[key] = true
		m.height++
		m.byHeight[m.height] = append(m.byHeight[m.height], abstract)
	}

	return abstract.BlockHash, nil
}
