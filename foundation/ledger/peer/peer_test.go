package peer_test

import (
	"testing"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
)

func Test_SetAddIsIdempotent(t *testing.T) {
	s := peer.NewSet()

	if !s.Add(peer.New(1, "a:9000")) {
		t.Fatalf("expected first add to report new")
	}
	if s.Add(peer.New(1, "a:9001")) {
		t.Fatalf("expected second add of the same id to report not new")
	}
}

func Test_SetCopyExcludesSelf(t *testing.T) {
	s := peer.NewSet()
	s.Add(peer.New(1, "a:9000"))
	s.Add(peer.New(2, "b:9000"))
	s.Add(peer.New(3, "c:9000"))

	others := s.Copy(node.ID(2))
	if len(others) != 2 {
		t.Fatalf("expected 2 peers excluding self, got %d", len(others))
	}
	for _, p := range others {
		if p.ID == 2 {
			t.Fatalf("expected self to be excluded from Copy")
		}
	}
}

func Test_SetRemove(t *testing.T) {
	s := peer.NewSet()
	s.Add(peer.New(1, "a:9000"))
	s.Remove(1)

	if _, ok := s.Get(1); ok {
		t.Fatalf("expected peer to be gone after Remove")
	}
}
