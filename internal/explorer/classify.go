package explorer

import (
	"strings"

	"nft-minter/internal/domain"
)

// Known calldata selectors.
const (
	selectorERC20Transfer = "0xa9059cbb" // transfer(address,uint256)
	selectorMint          = "0x40c10f19" // mint(address,uint256)
	selectorMintURI       = "0xd0def521" // mint(address,string)
)

// Classify maps a raw explorer transaction to a transfer kind. A missing
// recipient means contract creation; calldata selectors distinguish
// mints from plain transfers, and unknown contract calls count as mints
// for the dashboard's purposes.
func Classify(tx Transaction) domain.TransferKind {
	if tx.To == "" {
		return domain.TransferKindContractCreation
	}
	if tx.Input == "" || tx.Input == "0x" {
		return domain.TransferKindTransfer
	}
	if strings.HasPrefix(tx.Input, selectorERC20Transfer) {
		return domain.TransferKindTransfer
	}
	// selectorMint, selectorMintURI and any other contract call.
	return domain.TransferKindMint
}
