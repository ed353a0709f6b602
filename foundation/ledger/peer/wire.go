package peer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/chain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/proof"
)

// Envelope is the message exchanged between two nodes' communication
// servers: a transaction and the proof accompanying it, correlated by an
// id so a reply or a logged error can be matched back to the send.
type Envelope struct {
	ID          string          `json:"id"`
	SenderID    node.ID         `json:"senderId"`
	Transaction wireTransaction `json:"transaction"`
	Proof       wireProof       `json:"proof"`
}

// NewEnvelope builds an Envelope carrying tx and pf from senderID, stamped
// with a fresh correlation id.
func NewEnvelope(senderID node.ID, tx chain.Transaction, pf proof.Proof) Envelope {
	return Envelope{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		Transaction: fromTransaction(tx),
		Proof:       fromProof(pf),
	}
}

// Decode recovers the transaction and proof carried by the envelope.
func (e Envelope) Decode() (chain.Transaction, proof.Proof) {
	return e.Transaction.toTransaction(), e.Proof.toProof()
}

// =============================================================================

type wireSourceKey struct {
	SenderID uint32 `json:"senderId"`
	Number   uint32 `json:"number"`
}

func fromSourceKey(k chain.SourceKey) wireSourceKey {
	return wireSourceKey{SenderID: uint32(k.SenderID), Number: k.Number}
}

func (w wireSourceKey) toSourceKey() chain.SourceKey {
	return chain.SourceKey{SenderID: node.ID(w.SenderID), Number: w.Number}
}

type wireTransaction struct {
	Number      uint32          `json:"number"`
	IsGenesis   bool            `json:"isGenesis"`
	SenderID    uint32          `json:"senderId"`
	ReceiverID  uint32          `json:"receiverId"`
	Amount      uint64          `json:"amount"`
	Remainder   uint64          `json:"remainder"`
	Sources     []wireSourceKey `json:"sources"`
	Signature   string          `json:"signature"`
	BlockNumber uint32          `json:"blockNumber"`
}

func fromTransaction(t chain.Transaction) wireTransaction {
	sources := make([]wireSourceKey, len(t.Sources))
	for i, s := range t.Sources {
		sources[i] = fromSourceKey(s)
	}

	return wireTransaction{
		Number:      t.Number,
		IsGenesis:   t.IsGenesis,
		SenderID:    uint32(t.SenderID),
		ReceiverID:  uint32(t.ReceiverID),
		Amount:      t.Amount,
		Remainder:   t.Remainder,
		Sources:     sources,
		Signature:   hexutil.Encode(t.Signature[:]),
		BlockNumber: t.BlockNumber,
	}
}

func (w wireTransaction) toTransaction() chain.Transaction {
	sources := make([]chain.SourceKey, len(w.Sources))
	for i, s := range w.Sources {
		sources[i] = s.toSourceKey()
	}

	var sig ledgercrypto.Signature
	if b, err := hexutil.Decode(w.Signature); err == nil {
		copy(sig[:], b)
	}

	t := chain.Transaction{
		Number:     w.Number,
		IsGenesis:  w.IsGenesis,
		SenderID:   node.ID(w.SenderID),
		ReceiverID: node.ID(w.ReceiverID),
		Amount:     w.Amount,
		Remainder:  w.Remainder,
		Sources:    sources,
		Signature:  sig,
	}
	t.SetBlockNumber(w.BlockNumber)
	return t
}

type wireBlock struct {
	Number            uint32            `json:"number"`
	OwnerID           uint32            `json:"ownerId"`
	PreviousBlockHash string            `json:"previousBlockHash"`
	Transactions      []wireTransaction `json:"transactions"`
}

func fromBlock(b chain.Block) wireBlock {
	txs := make([]wireTransaction, len(b.Transactions))
	for i, t := range b.Transactions {
		txs[i] = fromTransaction(t)
	}

	return wireBlock{
		Number:            b.Number,
		OwnerID:           uint32(b.OwnerID),
		PreviousBlockHash: b.PreviousBlockHash.String(),
		Transactions:      txs,
	}
}

func (w wireBlock) toBlock() chain.Block {
	txs := make([]chain.Transaction, len(w.Transactions))
	for i, t := range w.Transactions {
		txs[i] = t.toTransaction()
	}

	var prev chain.Hash
	if b, err := hexutil.Decode(w.PreviousBlockHash); err == nil {
		copy(prev[:], b)
	}

	return chain.NewBlock(w.Number, node.ID(w.OwnerID), prev, txs)
}

type wireProof struct {
	Transaction  wireTransaction        `json:"transaction"`
	ChainUpdates map[string][]wireBlock `json:"chainUpdates"`
}

func fromProof(pf proof.Proof) wireProof {
	updates := make(map[string][]wireBlock, len(pf.ChainUpdates))
	for owner, blocks := range pf.ChainUpdates {
		wb := make([]wireBlock, len(blocks))
		for i, b := range blocks {
			wb[i] = fromBlock(b)
		}
		updates[ownerKey(owner)] = wb
	}

	return wireProof{Transaction: fromTransaction(pf.Transaction), ChainUpdates: updates}
}

func (w wireProof) toProof() proof.Proof {
	updates := make(map[node.ID][]chain.Block, len(w.ChainUpdates))
	for owner, blocks := range w.ChainUpdates {
		cb := make([]chain.Block, len(blocks))
		for i, b := range blocks {
			cb[i] = b.toBlock()
		}
		updates[parseOwnerKey(owner)] = cb
	}

	return proof.Proof{Transaction: w.Transaction.toTransaction(), ChainUpdates: updates}
}

// ownerKey/parseOwnerKey round-trip a node.ID through a JSON object key,
// since JSON object keys are always strings.
func ownerKey(id node.ID) string {
	return hexutil.EncodeUint64(uint64(id))
}

func parseOwnerKey(key string) node.ID {
	v, err := hexutil.DecodeUint64(key)
	if err != nil {
		return node.ID(0)
	}
	return node.ID(v)
}
