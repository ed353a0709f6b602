package public

import (
	"strconv"

	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
)

// parseNodeID parses a path parameter into a node.ID.
func parseNodeID(s string) (node.ID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return node.ID(n), nil
}

// status is the public view of this node's own chain position.
type status struct {
	NodeID      uint32 `json:"node_id"`
	ChainHeight uint32 `json:"chain_height"`
	Unspent     int    `json:"unspent_count"`
	KnownPeers  int    `json:"known_peers"`
}

// tx is the public view of a Transaction, hex-encoding its binary fields.
type tx struct {
	Number      uint32   `json:"number"`
	IsGenesis   bool     `json:"is_genesis"`
	SenderID    uint32   `json:"sender_id"`
	ReceiverID  uint32   `json:"receiver_id"`
	Amount      uint64   `json:"amount"`
	Remainder   uint64   `json:"remainder"`
	Sources     []string `json:"sources"`
	Signature   string   `json:"signature"`
	BlockNumber uint32   `json:"block_number"`
}

func fromTransaction(t chain.Transaction) tx {
	sources := make([]string, len(t.Sources))
	for i, s := range t.Sources {
		sources[i] = s.String()
	}

	return tx{
		Number:      t.Number,
		IsGenesis:   t.IsGenesis,
		SenderID:    uint32(t.SenderID),
		ReceiverID:  uint32(t.ReceiverID),
		Amount:      t.Amount,
		Remainder:   t.Remainder,
		Sources:     sources,
		Signature:   t.Signature.String(),
		BlockNumber: t.BlockNumber,
	}
}

// block is the public view of a Block.
type block struct {
	Number       uint32 `json:"number"`
	OwnerID      uint32 `json:"owner_id"`
	ParentHash   string `json:"parent_hash"`
	Transactions []tx   `json:"transactions"`
}

func fromBlock(b chain.Block) block {
	txs := make([]tx, len(b.Transactions))
	for i, t := range b.Transactions {
		txs[i] = fromTransaction(t)
	}

	return block{
		Number:       b.Number,
		OwnerID:      uint32(b.OwnerID),
		ParentHash:   b.PreviousBlockHash.String(),
		Transactions: txs,
	}
}

// transferRequest is the payload for submitting a new transfer.
type transferRequest struct {
	ReceiverID uint32 `json:"receiver_id" validate:"required"`
	Amount     uint64 `json:"amount" validate:"required,gt=0"`
}
