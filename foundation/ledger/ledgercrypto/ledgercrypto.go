// Package ledgercrypto provides helper functions for handling the ledger's
// signature needs.
package ledgercrypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PublicKeySize is the size in bytes of an Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize

// PrivateKeySize is the size in bytes of an Ed25519 private key (seed ‖ public key).
const PrivateKeySize = ed25519.PrivateKeySize

// SignatureSize is the size in bytes of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// PublicKey is a 32 byte Ed25519 public key.
type PublicKey [PublicKeySize]byte

// PrivateKey is a 64 byte Ed25519 private key.
type PrivateKey [PrivateKeySize]byte

// Signature is a 64 byte Ed25519 signature.
type Signature [SignatureSize]byte

// String renders the signature as a 0x-prefixed hex string, matching the
// teacher's hexutil.Encode convention for displaying signatures.
func (s Signature) String() string {
	return hexutil.Encode(s[:])
}

// Generate produces a new Ed25519 key pair.
func Generate() (PublicKey, PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return PublicKey{}, PrivateKey{}, fmt.Errorf("generating key pair: %w", err)
	}

	var pk PublicKey
	copy(pk[:], pub)

	var sk PrivateKey
	copy(sk[:], priv)

	return pk, sk, nil
}

// Public returns the public key embedded in priv's last 32 bytes, the way
// an Ed25519 seed‖public key pair is laid out. It lets a node recover its
// own public key from a key file that only stores the private half.
func (priv PrivateKey) Public() PublicKey {
	var pub PublicKey
	copy(pub[:], priv[ed25519.SeedSize:])
	return pub
}

// Sign produces a signature over msg using the specified private key.
func Sign(msg []byte, priv PrivateKey) Signature {
	sig := ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)

	var s Signature
	copy(s[:], sig)
	return s
}

// Verify reports whether sig is a valid signature of msg by pub. Invalid key
// material or a malformed signature surfaces as a false result, never a panic.
func Verify(msg []byte, sig Signature, pub PublicKey) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}

// SourceRef identifies a transaction by its owning node and its number
// within that node's chain, the unit used when listing a transaction's
// sources for signing.
type SourceRef struct {
	SenderID uint32
	Number   uint32
}

// CanonicalTransactionBytes produces the exact byte layout signed by the
// sender of a transaction:
//
//	sender.id (4B) ‖ receiver.id (4B) ‖ number (4B) ‖ amount (8B) ‖
//	remainder (8B) ‖ Σ source-identifiers
//
// where each source identifier is sender.id (4B) ‖ transaction.number (4B),
// serialized in insertion order. senderID is 0 for a genesis/mint
// transaction (sender == ⊥).
func CanonicalTransactionBytes(senderID, receiverID, number uint32, amount, remainder uint64, sources []SourceRef) []byte {
	buf := make([]byte, 0, 28+8*len(sources))

	var tmp4 [4]byte
	var tmp8 [8]byte

	binary.BigEndian.PutUint32(tmp4[:], senderID)
	buf = append(buf, tmp4[:]...)

	binary.BigEndian.PutUint32(tmp4[:], receiverID)
	buf = append(buf, tmp4[:]...)

	binary.BigEndian.PutUint32(tmp4[:], number)
	buf = append(buf, tmp4[:]...)

	binary.BigEndian.PutUint64(tmp8[:], amount)
	buf = append(buf, tmp8[:]...)

	binary.BigEndian.PutUint64(tmp8[:], remainder)
	buf = append(buf, tmp8[:]...)

	for _, s := range sources {
		binary.BigEndian.PutUint32(tmp4[:], s.SenderID)
		buf = append(buf, tmp4[:]...)
		binary.BigEndian.PutUint32(tmp4[:], s.Number)
		buf = append(buf, tmp4[:]...)
	}

	return buf
}
