package domain

// TransferEvent is one row of explorer-sourced account history, cached
// for the dashboards. Append-only; corresponds to transfer_events in
// ClickHouse.
type TransferEvent struct {
	Account     string       `json:"account"` // queried account address (lowercase 0x…)
	TxHash      string       `json:"tx_hash"`
	BlockNumber uint64       `json:"block_number"`
	Timestamp   int64        `json:"timestamp"` // unix seconds
	From        string       `json:"from"`
	To          string       `json:"to"`
	ValueWei    string       `json:"value_wei"` // decimal string, fits arbitrary precision
	Kind        TransferKind `json:"kind"`
	TokenID     string       `json:"token_id,omitempty"` // set for NFT transfers
	CreatedAt   int64        `json:"-"`                  // record insertion time (unix ms)
}

// TransferKind classifies an explorer history row.
type TransferKind string

const (
	TransferKindTransfer         TransferKind = "TRANSFER"
	TransferKindMint             TransferKind = "MINT"
	TransferKindNFT              TransferKind = "NFT_TRANSFER"
	TransferKindContractCreation TransferKind = "CONTRACT_CREATION"
)
