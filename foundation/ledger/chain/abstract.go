package chain

import (
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Abstract is the value a node commits to the main chain as a finality
// witness for one of its own blocks.
type Abstract struct {
	OwnerID     node.ID
	BlockNumber uint32
	BlockHash   Hash
	Signature   ledgercrypto.Signature
}

// CanonicalBytes is the wire encoding committed to the main chain:
// fixed-width big-endian integers followed by the hash and signature.
func (a Abstract) CanonicalBytes() []byte {
	buf := make([]byte, 0, 4+4+32+ledgercrypto.SignatureSize)
	buf = appendUint32(buf, uint32(a.OwnerID))
	buf = appendUint32(buf, a.BlockNumber)
	buf = append(buf, a.BlockHash[:]...)
	buf = append(buf, a.Signature[:]...)
	return buf
}

// NewAbstract builds and signs the abstract for a block owned by the given
// private key holder.
func NewAbstract(ownerID node.ID, blockNumber uint32, blockHash Hash, priv ledgercrypto.PrivateKey) Abstract {
	a := Abstract{OwnerID: ownerID, BlockNumber: blockNumber, BlockHash: blockHash}

	unsigned := a.CanonicalBytes()
	// Signature bytes are zero during signing; sign the unsigned prefix.
	unsigned = unsigned[:len(unsigned)-ledgercrypto.SignatureSize]
	a.Signature = ledgercrypto.Sign(unsigned, priv)

	return a
}
