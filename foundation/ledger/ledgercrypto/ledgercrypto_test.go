package ledgercrypto_test

import (
	"testing"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
)

func Test_SignVerify(t *testing.T) {
	pub, priv, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate a key pair: %s", err)
	}

	msg := ledgercrypto.CanonicalTransactionBytes(1, 2, 3, 100, 0, nil)

	sig := ledgercrypto.Sign(msg, priv)
	if !ledgercrypto.Verify(msg, sig, pub) {
		t.Fatalf("should be able to verify a signature produced with the matching key")
	}
}

func Test_VerifyRejectsWrongKey(t *testing.T) {
	_, priv, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate a key pair: %s", err)
	}

	other, _, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate a key pair: %s", err)
	}

	msg := ledgercrypto.CanonicalTransactionBytes(1, 2, 3, 100, 0, nil)
	sig := ledgercrypto.Sign(msg, priv)

	if ledgercrypto.Verify(msg, sig, other) {
		t.Fatalf("should not verify a signature against an unrelated public key")
	}
}

func Test_SignatureStringIsHexPrefixed(t *testing.T) {
	_, priv, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate a key pair: %s", err)
	}

	sig := ledgercrypto.Sign([]byte("msg"), priv)
	s := sig.String()
	if len(s) < 2 || s[:2] != "0x" {
		t.Fatalf("expected a 0x-prefixed hex string, got %q", s)
	}
}

func Test_PrivateKeyPublicRecoversMatchingKey(t *testing.T) {
	pub, priv, err := ledgercrypto.Generate()
	if err != nil {
		t.Fatalf("should be able to generate a key pair: %s", err)
	}

	if priv.Public() != pub {
		t.Fatalf("expected priv.Public() to recover the generated public key")
	}
}

func Test_CanonicalBytesIncludesSources(t *testing.T) {
	sources := []ledgercrypto.SourceRef{{SenderID: 7, Number: 1}, {SenderID: 7, Number: 2}}

	withSources := ledgercrypto.CanonicalTransactionBytes(1, 2, 3, 100, 0, sources)
	withoutSources := ledgercrypto.CanonicalTransactionBytes(1, 2, 3, 100, 0, nil)

	if len(withSources) == len(withoutSources) {
		t.Fatalf("expected canonical bytes to grow with the number of sources")
	}
}
