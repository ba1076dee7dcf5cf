package models

// WhaleDirection classifies a large transfer's market meaning.
type WhaleDirection string

const (
	WhaleAccumulation WhaleDirection = "accumulation"
	WhaleDistribution WhaleDirection = "distribution"
	WhaleTransferOnly WhaleDirection = "transfer"
)

// WhaleTransfer is one large-value transfer event. Batches replace the
// previous batch wholesale; transfers are never merged across batches.
type WhaleTransfer struct {
	Blockchain string         `json:"blockchain"`
	Symbol     string         `json:"symbol"`
	Amount     float64        `json:"amount"`
	AmountUSD  float64        `json:"amountUsd"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Timestamp  int64          `json:"timestamp"` // unix milliseconds
	Hash       string         `json:"hash"`
	Direction  WhaleDirection `json:"type"`
}

// WhaleFlow aggregates a batch into accumulation vs distribution USD totals.
type WhaleFlow struct {
	Accumulation float64 `json:"accumulation"`
	Distribution float64 `json:"distribution"`
	NetFlow      float64 `json:"netFlow"`
}
