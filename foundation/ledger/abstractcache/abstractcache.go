// Package abstractcache maintains an eventually-consistent local mirror of
// every block-abstract hash the main chain has committed. It exists so a
// ProofVerifier can decide "is this block finalized" with a pure, never-
// blocking read, while a single background updater does the work of
// staying in sync with the main chain.
package abstractcache

import (
	"sync"
	"time"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/mainchain"
)

// EventHandler is called to record what the cache's updater is doing. It
// follows the teacher blockchain service's style of a single varargs
// logging hook rather than a structured logger, since this package has no
// opinion about log sinks.
type EventHandler func(format string, v ...any)

// startupBackoff is the fixed 1s, then 2s, then steady-2s retry schedule
// used while the cache has not yet completed a single update.
var startupBackoff = []time.Duration{time.Second, 2 * time.Second}

// Cache is a grow-only set of committed block hashes, kept current by one
// serial updater goroutine. Entries are never removed: AbstractCache
// membership is monotone by design.
type Cache struct {
	mainChain mainchain.Client
	evHandler EventHandler

	mu            sync.RWMutex
	hashes        map[chain.Hash]bool
	currentHeight uint64

	requests chan uint64
	wg       sync.WaitGroup
	shut     chan struct{}
}

// New constructs a Cache bound to a main chain client. It does not start
// the updater; call Run for that, which also performs the blocking
// startup update.
func New(mc mainchain.Client, evHandler EventHandler) *Cache {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	return &Cache{
		mainChain: mc,
		evHandler: evHandler,
		hashes:    make(map[chain.Hash]bool),
		requests:  make(chan uint64, 1),
		shut:      make(chan struct{}),
	}
}

// Run blocks until the first update against the main chain succeeds, then
// starts the background updater goroutine and returns.
func (c *Cache) Run() {
	c.evHandler("abstractcache: run: initial update: started")
	c.initialUpdate()
	c.evHandler("abstractcache: run: initial update: completed")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.updater()
	}()
}

// Shutdown stops the updater goroutine and waits for it to exit.
func (c *Cache) Shutdown() {
	close(c.shut)
	c.wg.Wait()
}

// IsPresent reports whether blockHash has been observed as committed. It
// is a pure point read and never blocks on the main chain.
func (c *Cache) IsPresent(blockHash chain.Hash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hashes[blockHash]
}

// CurrentHeight returns the highest main-chain height this cache has fully
// absorbed.
func (c *Cache) CurrentHeight() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.currentHeight
}

// Commit forwards an abstract to the main chain. The resulting hash is not
// added to the set directly; it becomes visible once an update triggered by
// NoteNewHeight pulls it back from the main chain.
func (c *Cache) Commit(abstract chain.Abstract) (chain.Hash, error) {
	return c.mainChain.Commit(abstract)
}

// NoteNewHeight asks the updater to catch the cache up to at least height
// h. It never blocks the caller; requests coalesce onto one pending slot so
// a burst of notifications only triggers one update to the latest target.
func (c *Cache) NoteNewHeight(h uint64) {
	select {
	case c.requests <- h:
	default:
		c.drainAndReplace(h)
	}
}

// drainAndReplace keeps only the highest pending target when the request
// channel is already full, so the updater never falls behind on height.
func (c *Cache) drainAndReplace(h uint64) {
	select {
	case old := <-c.requests:
		if old > h {
			h = old
		}
	default:
	}
	select {
	case c.requests <- h:
	default:
	}
}

// initialUpdate retries querying the main chain with a fixed 1s, then
// steady 2s, backoff until an update succeeds. It runs once, before the
// updater goroutine starts, and does not return until it succeeds.
func (c *Cache) initialUpdate() {
	for attempt := 0; ; attempt++ {
		status, err := c.mainChain.Status()
		if err == nil {
			err = c.updateTo(status.Height)
		}
		if err == nil {
			return
		}

		wait := startupBackoff[len(startupBackoff)-1]
		if attempt < len(startupBackoff) {
			wait = startupBackoff[attempt]
		}

		c.evHandler("abstractcache: initialUpdate: retry in %s: %s", wait, err)
		time.Sleep(wait)
	}
}

// updater is the single serial worker: every write to the hash set
// serializes through this goroutine, processing one target height at a
// time off the requests channel.
func (c *Cache) updater() {
	c.evHandler("abstractcache: updater: started")
	defer c.evHandler("abstractcache: updater: completed")

	for {
		select {
		case target := <-c.requests:
			if err := c.updateTo(target); err != nil {
				c.evHandler("abstractcache: updater: update to %d: ERROR: %s", target, err)
			}
		case <-c.shut:
			return
		}
	}
}

// updateTo queries the main chain for every height in
// (currentHeight, target], capped at the main chain's finalized height, and
// inserts their abstracts' hashes. It advances currentHeight after each
// height it absorbs, so a failure at some height i leaves currentHeight at
// i-1 and the next attempt resumes there.
func (c *Cache) updateTo(target uint64) error {
	status, err := c.mainChain.Status()
	if err != nil {
		return err
	}
	if target > status.Height {
		target = status.Height
	}

	from := c.CurrentHeight() + 1

	for h := from; h <= target; h++ {
		abstracts, err := c.mainChain.Query(h)
		if err != nil {
			return err
		}

		c.mu.Lock()
		for _, a := range abstracts {
			c.hashes[a.BlockHash] = true
		}
		c.currentHeight = h
		c.mu.Unlock()
	}

	return nil
}
