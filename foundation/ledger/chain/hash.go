package chain

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash is a 32 byte SHA-256 digest, the unit identifying both blocks and
// committed abstracts.
type Hash [sha256.Size]byte

// String renders the hash as a 0x-prefixed hex string, matching the
// teacher's hexutil.Encode convention for displaying chain hashes.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func sha256Sum(data []byte) Hash {
	var h Hash
	sum := sha256.Sum256(data)
	copy(h[:], sum[:])
	return h
}
