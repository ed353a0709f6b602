package mainchain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// HTTPClient talks to the main chain's RPC surface over HTTP+JSON. The
// main chain's own wire format is explicitly opaque to the ledger core, so
// this is one reasonable concrete binding rather than a mandated protocol.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a Client bound to a main-chain RPC endpoint such as
// "http://mainchain.internal:9000".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, client: &http.Client{}}
}

// Status implements Client.
func (c *HTTPClient) Status() (Status, error) {
	var status Status
	url := fmt.Sprintf("%s/v1/mainchain/status", c.baseURL)
	if err := c.send(http.MethodGet, url, nil, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// Query implements Client.
func (c *HTTPClient) Query(height uint64) ([]chain.Abstract, error) {
	var wire []wireAbstract
	url := fmt.Sprintf("%s/v1/mainchain/query/%d", c.baseURL, height)
	if err := c.send(http.MethodGet, url, nil, &wire); err != nil {
		return nil, err
	}

	out := make([]chain.Abstract, len(wire))
	for i, w := range wire {
		out[i] = w.toAbstract()
	}
	return out, nil
}

// Commit implements Client.
func (c *HTTPClient) Commit(abstract chain.Abstract) (chain.Hash, error) {
	var resp struct {
		BlockHash string `json:"blockHash"`
	}

	url := fmt.Sprintf("%s/v1/mainchain/commit", c.baseURL)
	if err := c.send(http.MethodPost, url, fromAbstract(abstract), &resp); err != nil {
		return chain.Hash{}, err
	}
	return abstract.BlockHash, nil
}

// wireAbstract is the JSON shape exchanged with the main chain.
type wireAbstract struct {
	OwnerID     uint32 `json:"ownerId"`
	BlockNumber uint32 `json:"blockNumber"`
	BlockHash   string `json:"blockHash"`
	Signature   string `json:"signature"`
}

func fromAbstract(a chain.Abstract) wireAbstract {
	return wireAbstract{
		OwnerID:     uint32(a.OwnerID),
		BlockNumber: a.BlockNumber,
		BlockHash:   a.BlockHash.String(),
		Signature:   hexutil.Encode(a.Signature[:]),
	}
}

func (w wireAbstract) toAbstract() chain.Abstract {
	var hash chain.Hash
	var sig ledgercrypto.Signature

	if b, err := hexutil.Decode(w.BlockHash); err == nil {
		copy(hash[:], b)
	}
	if b, err := hexutil.Decode(w.Signature); err == nil {
		copy(sig[:], b)
	}

	return chain.Abstract{
		OwnerID:     node.ID(w.OwnerID),
		BlockNumber: w.BlockNumber,
		BlockHash:   hash,
		Signature:   sig,
	}
}

// send mirrors the teacher blockchain service's JSON-over-HTTP helper: post
// or get, decode errors from a non-2xx body, decode success into dataRecv.
func (c *HTTPClient) send(method, url string, dataSend, dataRecv any) error {
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

	resp, err := c.client.Do(req)
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
