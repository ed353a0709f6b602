package proof

import (
	"fmt"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgererr"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/metaknowledge"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Constructor builds the minimal Proof for a transaction, pruned against a
// receiver's meta-knowledge. The traversal is mutually recursive in the
// source algorithm between "process newly added blocks" and "process their
// sources"; here it runs as an explicit worklist so recursion depth never
// exceeds the number of distinct owners touched, not the number of blocks.
type Constructor struct {
	chains ChainSource
}

// NewConstructor builds a Constructor that resolves owner chains through chains.
func NewConstructor(chains ChainSource) *Constructor {
	return &Constructor{chains: chains}
}

// pendingOwner is one unit of work on the worklist: a run of newly added
// blocks belonging to owner, still needing their sources walked.
type pendingOwner struct {
	owner  node.ID
	blocks []chain.Block
}

// Construct builds the minimal Proof that lets receiverID accept tx from
// senderID, given receiverMeta as the receiver's last-known snapshot of
// meta-knowledge. tx must already have a block number; calling Construct
// on a transaction that was never included in a block is a programming
// error.
func (c *Constructor) Construct(tx chain.Transaction, senderID, receiverID node.ID, receiverMeta *metaknowledge.MetaKnowledge) (Proof, error) {
	if !tx.HasBlockNumber() {
		panic("proof: Construct called on a transaction with no block number")
	}

	toSend := make(map[node.ID][]chain.Block)

	senderChain, ok := c.chains.Chain(senderID)
	if !ok {
		return Proof{}, fmt.Errorf("sender %d: %w", senderID, ledgererr.MissingBlock)
	}

	first, err := c.blocksToSendFor(senderID, senderChain, tx.BlockNumber, receiverMeta)
	if err != nil {
		return Proof{}, err
	}

	added := merge(toSend, senderID, first)
	if len(added) == 0 {
		return Proof{Transaction: tx, ChainUpdates: toSend}, nil
	}

	worklist := []pendingOwner{{owner: senderID, blocks: added}}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		next, err := c.processSources(item.blocks, senderID, receiverID, toSend, receiverMeta)
		if err != nil {
			return Proof{}, err
		}
		worklist = append(worklist, next...)
	}

	return Proof{Transaction: tx, ChainUpdates: toSend}, nil
}

// processSources walks every transaction in blocks, and for each source
// whose owner still needs introducing, merges that owner's pruned chain
// slice into toSend, returning newly added work for the caller's worklist.
func (c *Constructor) processSources(blocks []chain.Block, senderID, receiverID node.ID, toSend map[node.ID][]chain.Block, receiverMeta *metaknowledge.MetaKnowledge) ([]pendingOwner, error) {
	var next []pendingOwner

	for _, b := range blocks {
		for _, t := range b.Transactions {
			for _, s := range t.Sources {
				owner := s.SenderID

				// Genesis mints need no proof; sender-owned blocks are
				// already scheduled; the receiver already knows its own
				// chain.
				if owner == node.Genesis || owner == senderID || owner == receiverID {
					continue
				}

				ownerChain, ok := c.chains.Chain(owner)
				if !ok {
					return nil, fmt.Errorf("source owner %d: %w", owner, ledgererr.MissingBlock)
				}

				_, srcBlock, ok := ownerChain.Find(s)
				if !ok {
					return nil, fmt.Errorf("source %s: %w", s, ledgererr.MissingBlock)
				}

				l, err := c.blocksToSendFor(owner, ownerChain, srcBlock.Number, receiverMeta)
				if err != nil {
					return nil, err
				}

				added := merge(toSend, owner, l)
				if len(added) > 0 {
					next = append(next, pendingOwner{owner: owner, blocks: added})
				}
			}
		}
	}

	return next, nil
}

// blocksToSendFor computes the receiver's meta-knowledge-pruned slice of
// owner's chain up through the next committed block at or after
// blockNumber.
func (c *Constructor) blocksToSendFor(owner node.ID, ownerChain *chain.Chain, blockNumber uint32, receiverMeta *metaknowledge.MetaKnowledge) ([]chain.Block, error) {
	b, ok := ownerChain.At(blockNumber)
	if !ok {
		return nil, fmt.Errorf("owner %d block %d: %w", owner, blockNumber, ledgererr.MissingBlock)
	}

	committed, ok := ownerChain.NextCommittedBlock(b.Number)
	if !ok {
		return nil, fmt.Errorf("owner %d block %d: %w", owner, blockNumber, ledgererr.NotYetCommitted)
	}

	return receiverMeta.BlocksToSend(owner, ownerChain, committed.Number), nil
}

// merge folds a freshly computed candidate slice l for owner into toSend.
// Per the pruning invariant, l is always a contiguous extension of
// whatever is already recorded for owner (both start right after the
// receiver's meta-knowledge for owner): if l is no longer than what is
// already there, nothing is new; otherwise the suffix beyond what was
// already recorded is newly added and returned for further recursion.
func merge(toSend map[node.ID][]chain.Block, owner node.ID, l []chain.Block) []chain.Block {
	if len(l) == 0 {
		return nil
	}

	existing := toSend[owner]
	if len(existing) == 0 {
		toSend[owner] = l
		return l
	}

	if len(l) <= len(existing) {
		return nil
	}

	suffix := l[len(existing):]
	toSend[owner] = l
	return suffix
}
