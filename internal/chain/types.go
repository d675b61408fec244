package chain

// ConfirmationLevel is a ledger durability tier. Levels are ordered:
// unobserved < processed < confirmed < finalized.
type ConfirmationLevel string

const (
	LevelUnobserved ConfirmationLevel = ""
	LevelProcessed  ConfirmationLevel = "processed"
	LevelConfirmed  ConfirmationLevel = "confirmed"
	LevelFinalized  ConfirmationLevel = "finalized"
)

var levelOrder = map[ConfirmationLevel]int{
	LevelUnobserved: 0,
	LevelProcessed:  1,
	LevelConfirmed:  2,
	LevelFinalized:  3,
}

// AtLeast reports whether l is at or above the target durability tier.
func (l ConfirmationLevel) AtLeast(target ConfirmationLevel) bool {
	return levelOrder[l] >= levelOrder[target]
}

// ActionKind classifies what a transaction did, as seen by the indexer.
type ActionKind string

const (
	ActionTrade     ActionKind = "trade"
	ActionCopyTrade ActionKind = "copy_trade"
)

// TradeIntent describes a plain swap the client claims to be submitting.
// Advisory only: nothing here is trusted for scoring.
type TradeIntent struct {
	InputMint   string
	OutputMint  string
	AmountIn    float64
	Route       string
	SlippageBps int
	FeeAmount   float64
}

// CopyTradeIntent describes a swap mirrored from another trader.
type CopyTradeIntent struct {
	TradeIntent
	SourceActor string // address of the trader being copied
}

// Intent is the client-declared purpose of a transaction, one variant per
// action kind.
type Intent struct {
	Kind  ActionKind
	Trade *TradeIntent
	Copy  *CopyTradeIntent
}

// SignedTransaction is an opaque signed payload plus the client's claims
// about it. Immutable once submitted.
type SignedTransaction struct {
	Payload []byte
	Actor   string // declared fee-payer address
	Intent  Intent
}

// SignatureStatus is the chain's view of a submitted signature.
// A zero Level with no Err means the node has not observed it yet.
type SignatureStatus struct {
	Level ConfirmationLevel
	Slot  uint64
	Err   string // non-empty when the transaction executed with an error
}

// Transfer is a single token movement inside an indexed transaction.
type Transfer struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	Mint     string  `json:"mint"`
	USDValue float64 `json:"usdValue"`
}

// TransactionDetail is the indexer's structured description of a landed
// transaction. This, not client metadata, is the source of truth for
// anything that affects scoring.
type TransactionDetail struct {
	Signature   string     `json:"signature"`
	Type        string     `json:"type"`
	FeePayer    string     `json:"feePayer"`
	Slot        uint64     `json:"slot"`
	Transfers   []Transfer `json:"transfers"`
	SourceActor string     `json:"sourceActor,omitempty"`
}

// VolumeUSD sums the USD value of the transaction's outgoing transfers from
// the fee payer.
func (d *TransactionDetail) VolumeUSD() float64 {
	total := 0.0
	for _, tr := range d.Transfers {
		if tr.From == d.FeePayer {
			total += tr.USDValue
		}
	}
	return total
}
