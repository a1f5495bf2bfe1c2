package domain

// TxStatus is the lifecycle of a submitted transaction.
type TxStatus string

const (
	TxPending   TxStatus = "PENDING"
	TxConfirmed TxStatus = "CONFIRMED"
	TxFailed    TxStatus = "FAILED"
)

// TransactionHandle is created when the network accepts a contract call.
// The hash never changes; Status transitions away from TxPending exactly
// once, when the mined receipt is observed.
type TransactionHandle struct {
	Hash        string // 0x-prefixed transaction hash
	Status      TxStatus
	BlockNumber uint64 // set when mined
}
