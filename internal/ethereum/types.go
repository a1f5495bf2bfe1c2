package ethereum

import (
	"fmt"
	"math/big"
	"strings"
)

// Receipt statuses per the Ethereum receipt envelope.
const (
	ReceiptStatusFailed    = uint64(0)
	ReceiptStatusSucceeded = uint64(1)
)

// Receipt is the network's record of a mined transaction's outcome.
type Receipt struct {
	TxHash          string
	BlockNumber     uint64
	Status          uint64 // 1 = success, 0 = revert
	GasUsed         uint64
	ContractAddress string // set for contract-creation transactions
}

// TxMsg is the wire shape of an eth_sendTransaction call. To is empty
// for contract creation.
type TxMsg struct {
	From  string
	To    string
	Data  []byte
	Value *big.Int
}

// toRPC converts the message to the JSON-RPC parameter object.
func (m TxMsg) toRPC() map[string]string {
	obj := map[string]string{
		"from": m.From,
	}
	if m.To != "" {
		obj["to"] = m.To
	}
	if len(m.Data) > 0 {
		obj["data"] = EncodeBytes(m.Data)
	}
	if m.Value != nil && m.Value.Sign() > 0 {
		obj["value"] = "0x" + m.Value.Text(16)
	}
	return obj
}

// Header is a minimal new-block notification payload.
type Header struct {
	Number uint64
	Hash   string
}

// parseQuantity decodes a 0x-prefixed hex quantity into uint64.
func parseQuantity(s string) (uint64, error) {
	v, err := parseQuantityBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("quantity %s overflows uint64", s)
	}
	return v.Uint64(), nil
}

// parseQuantityBig decodes a 0x-prefixed hex quantity of arbitrary size.
func parseQuantityBig(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty hex quantity %q", s)
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}
