package peer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// Tracker discovers and registers nodes against a directory service, the
// way the teacher's worker gossips peer lists except centralized: each
// node's communication server asks the tracker who else is registered
// rather than asking a random known peer.
//
// It implements store.Tracker; peer avoids importing store to keep the
// dependency edge pointing from store down to peer, not back up.
type Tracker struct {
	baseURL string
	client  *http.Client
	self    Peer
}

// NewTracker builds a Tracker bound to a directory service endpoint, and
// records self so RegisterNode can tell the directory where to reach this
// node once it has a public key.
func NewTracker(baseURL string, self Peer) *Tracker {
	return &Tracker{baseURL: baseURL, client: &http.Client{}, self: self}
}

// RegisterNode announces pub as this node's public key, returning the
// node.Node the directory now has on record for it.
func (t *Tracker) RegisterNode(pub ledgercrypto.PublicKey) (node.Node, error) {
	req := wireRegistration{
		ID:        uint32(t.self.ID),
		Address:   t.self.Address,
		PublicKey: hexutil.Encode(pub[:]),
	}

	var resp wireRegistration
	url := fmt.Sprintf("%s/v1/tracker/register", t.baseURL)
	if err := send(t.client, http.MethodPost, url, req, &resp); err != nil {
		return node.Node{}, err
	}

	return resp.toNode(), nil
}

// UpdateNodes returns every node currently registered with the directory.
func (t *Tracker) UpdateNodes() (map[node.ID]node.Node, error) {
	var resp []wireRegistration
	url := fmt.Sprintf("%s/v1/tracker/nodes", t.baseURL)
	if err := send(t.client, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	out := make(map[node.ID]node.Node, len(resp))
	for _, w := range resp {
		n := w.toNode()
		out[n.ID] = n
	}
	return out, nil
}

type wireRegistration struct {
	ID        uint32 `json:"id"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

func (w wireRegistration) toNode() node.Node {
	var pub ledgercrypto.PublicKey
	if b, err := hexutil.Decode(w.PublicKey); err == nil {
		copy(pub[:], b)
	}
	return node.New(node.ID(w.ID), w.Address, pub)
}

// send mirrors the main chain client's JSON-over-HTTP helper: post or get,
// decode errors from a non-2xx body, decode success into dataRecv.
func send(client *http.Client, method, url string, dataSend, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
