package domain

// FailureReason classifies why an attempt reached StateFailed.
type FailureReason string

const (
	// FailureValidation is local and user-correctable; no network call was made.
	FailureValidation FailureReason = "VALIDATION_ERROR"

	// FailureMediaPin and FailureMetadataPin carry the pinning service's
	// message verbatim. No contract interaction happened.
	FailureMediaPin    FailureReason = "MEDIA_PIN_FAILURE"
	FailureMetadataPin FailureReason = "METADATA_PIN_FAILURE"

	// Wallet / submission failures.
	FailureWalletUnavailable      FailureReason = "WALLET_UNAVAILABLE"
	FailureUserRejected           FailureReason = "USER_REJECTED"
	FailureSubmissionRejected     FailureReason = "SUBMISSION_REJECTED"
	FailureContractAddressInvalid FailureReason = "CONTRACT_ADDRESS_INVALID"

	// FailureNetwork covers RPC-layer and connectivity errors.
	FailureNetwork FailureReason = "NETWORK_ERROR"

	// FailureTransactionReverted means the transaction was mined with
	// receipt status 0. Observed only at confirmation.
	FailureTransactionReverted FailureReason = "TRANSACTION_REVERTED"
)

// Failure is the terminal failure record of an attempt. Message is
// surfaced to the user as-is; no failure branch may be swallowed
// without producing one of these.
type Failure struct {
	Reason  FailureReason
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Reason)
	}
	return string(f.Reason) + ": " + f.Message
}
