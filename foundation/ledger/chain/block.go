package chain

import (
	"fmt"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/blockchain/merkle"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Block is an append-only, owner-private unit of the ledger. Block number i
// sits at position i in its owner's chain; position 0 is the shared genesis
// block, identical across all nodes.
type Block struct {
	Number            uint32
	OwnerID           node.ID
	PreviousBlockHash Hash
	Transactions      []Transaction

	hash      Hash
	hashKnown bool
}

// NewBlock constructs a block. The hash is computed lazily on first call to
// Hash, then cached — a block's contents never change after construction.
func NewBlock(number uint32, ownerID node.ID, previousBlockHash Hash, txs []Transaction) Block {
	return Block{
		Number:            number,
		OwnerID:           ownerID,
		PreviousBlockHash: previousBlockHash,
		Transactions:      txs,
	}
}

// transactionsRoot returns the merkle root over the block's transactions,
// standing in for the spec's "Σ transaction-hashes" term: rather than a
// flat sum, the transactions are combined through the teacher's generic
// merkle.Tree so a proof recipient could in principle verify a single
// transaction's membership without the whole block.
func (b Block) transactionsRoot() (Hash, error) {
	if len(b.Transactions) == 0 {
		return Hash{}, nil
	}

	tree, err := merkle.NewTree(b.Transactions)
	if err != nil {
		return Hash{}, fmt.Errorf("building transaction merkle tree: %w", err)
	}

	var root Hash
	copy(root[:], tree.MerkleRoot)
	return root, nil
}

// Hash returns SHA-256(owner.id ‖ number ‖ previousBlockHash ‖ Σ
// transaction-hashes), computing it once and caching the result — a block
// is never mutated after creation, so the hash never changes.
func (b *Block) Hash() (Hash, error) {
	if b.hashKnown {
		return b.hash, nil
	}

	root, err := b.transactionsRoot()
	if err != nil {
		return Hash{}, err
	}

	buf := make([]byte, 0, 4+4+32+32)
	buf = appendUint32(buf, uint32(b.OwnerID))
	buf = appendUint32(buf, b.Number)
	buf = append(buf, b.PreviousBlockHash[:]...)
	buf = append(buf, root[:]...)

	b.hash = sha256Sum(buf)
	b.hashKnown = true
	return b.hash, nil
}

// Equal reports whether two blocks denote the same position in the same
// owner's chain.
func (b Block) Equal(other Block) bool {
	return b.OwnerID == other.OwnerID && b.Number == other.Number
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
