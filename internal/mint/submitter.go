// Package mint orchestrates the full mint pipeline: validate input, pin
// the media asset, pin the metadata document, submit the contract call,
// and observe its confirmation. Each user action runs as one Attempt
// walking a fixed state chain with no retries and no back-edges.
package mint

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nft-minter/internal/domain"
	"nft-minter/internal/observability"
	"nft-minter/internal/pinning"
	"nft-minter/internal/storage"
	"nft-minter/internal/wallet"
)

// ErrAttemptInFlight means the account already has an unfinished attempt.
// One in-flight attempt per account; a fresh attempt may start once the
// current one reaches a terminal state.
var ErrAttemptInFlight = errors.New("mint: an attempt is already in flight for this account")

// ErrNoAccount means no wallet account is connected.
var ErrNoAccount = errors.New("mint: no connected account")

// MediaPinner uploads a binary asset and returns its gateway URI.
type MediaPinner interface {
	PinFile(ctx context.Context, asset pinning.Asset) pinning.Result
}

// MetadataPinner uploads a metadata document and returns its gateway URI.
type MetadataPinner interface {
	PinJSON(ctx context.Context, doc domain.TokenMetadata) pinning.Result
}

// Wallet is the slice of the wallet session the pipeline needs.
type Wallet interface {
	Account() string
	SubmitMint(ctx context.Context, contractAddr, recipient, metadataURI string) (*domain.TransactionHandle, error)
	AwaitConfirmation(ctx context.Context, handle *domain.TransactionHandle) error
}

// Observer receives a snapshot of the attempt after every state
// transition. The snapshot taken at AwaitingConfirmation already carries
// the pending transaction hash.
type Observer func(domain.Attempt)

// Options for creating a Submitter.
type Options struct {
	Media    MediaPinner
	Metadata MetadataPinner
	Wallet   Wallet

	// ContractAddress is the deployed NFT contract the mint call targets.
	ContractAddress string

	// Attempts receives terminal attempts for the dashboards. Optional;
	// persistence failures are logged and never alter pipeline state.
	Attempts storage.AttemptStore

	// Observer is notified on every transition. Optional.
	Observer Observer

	Metrics *observability.Metrics // optional
	Logger  zerolog.Logger
}

// Submitter runs mint attempts. Safe for concurrent use; attempts for
// distinct accounts proceed in parallel, attempts for the same account
// are rejected while one is in flight.
type Submitter struct {
	media    MediaPinner
	metadata MetadataPinner
	wallet   Wallet

	contractAddress string
	attempts        storage.AttemptStore
	observer        Observer
	metrics         *observability.Metrics
	logger          zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // accounts with a running attempt
}

// NewSubmitter creates a Submitter.
func NewSubmitter(opts Options) *Submitter {
	return &Submitter{
		media:           opts.Media,
		metadata:        opts.Metadata,
		wallet:          opts.Wallet,
		contractAddress: opts.ContractAddress,
		attempts:        opts.Attempts,
		observer:        opts.Observer,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
	}
}

// Submit runs one full mint attempt to its terminal state and returns
// it. Pipeline failures are encoded in the returned attempt, not in the
// error: a non-nil error means the attempt never started.
func (s *Submitter) Submit(ctx context.Context, input domain.MintInput) (*domain.Attempt, error) {
	account := s.wallet.Account()
	if account == "" {
		return nil, ErrNoAccount
	}

	if err := s.acquire(account); err != nil {
		return nil, err
	}
	defer s.release(account)

	attempt := &domain.Attempt{
		ID:        uuid.NewString(),
		Account:   account,
		Input:     input,
		State:     domain.StateIdle,
		StartedAt: time.Now(),
	}
	if s.metrics != nil {
		s.metrics.AttemptsStarted.Inc()
	}

	s.run(ctx, attempt)

	s.persist(ctx, attempt)
	return attempt, nil
}

// run drives the attempt through the state chain. Every failure branch
// produces a terminal Failed state with a typed reason; nothing is
// swallowed.
func (s *Submitter) run(ctx context.Context, a *domain.Attempt) {
	// Stage 1: validation. No network call happens past a bad input.
	s.transition(a, domain.StateValidatingInput)
	if err := a.Input.Validate(); err != nil {
		s.fail(a, domain.FailureValidation, err.Error())
		return
	}

	// Stage 2: pin the media asset.
	s.transition(a, domain.StatePinningMedia)
	mediaResult := s.timedPin(ctx, "media", a)
	if !mediaResult.Success {
		s.fail(a, domain.FailureMediaPin, mediaResult.Message)
		return
	}
	a.MediaURI = mediaResult.URI

	// Stage 3: build and pin the metadata document.
	s.transition(a, domain.StatePinningMetadata)
	doc, err := domain.NewTokenMetadata(a.Input.Name, a.Input.Description, a.MediaURI)
	if err != nil {
		s.fail(a, domain.FailureMetadataPin, err.Error())
		return
	}
	metaResult := s.metadata.PinJSON(ctx, doc)
	s.observePin("metadata", metaResult)
	if !metaResult.Success {
		s.fail(a, domain.FailureMetadataPin, metaResult.Message)
		return
	}
	a.MetadataURI = metaResult.URI

	// Stage 4: submit the contract call. The token is minted to the
	// connected account.
	s.transition(a, domain.StateSubmittingTransaction)
	handle, err := s.wallet.SubmitMint(ctx, s.contractAddress, a.Account, a.MetadataURI)
	if err != nil {
		reason := submissionFailure(err)
		s.fail(a, reason, err.Error())
		return
	}
	a.Tx = handle

	// Stage 5: the pending hash becomes observable here, before any
	// confirmation arrives.
	s.transition(a, domain.StateAwaitingConfirmation)

	// Stage 6: resolve from the mined receipt. The wait is unbounded
	// unless the caller's ctx bounds it.
	submittedAt := time.Now()
	if s.metrics != nil {
		s.metrics.TransactionsPending.Inc()
	}
	err = s.wallet.AwaitConfirmation(ctx, a.Tx)
	if s.metrics != nil {
		s.metrics.TransactionsPending.Dec()
		s.metrics.ConfirmationLatency.Observe(time.Since(submittedAt).Seconds())
	}
	if err != nil {
		s.fail(a, domain.FailureNetwork, err.Error())
		return
	}

	switch a.Tx.Status {
	case domain.TxConfirmed:
		s.transition(a, domain.StateConfirmed)
		a.FinishedAt = time.Now()
		if s.metrics != nil {
			s.metrics.AttemptsFinished.WithLabelValues("confirmed").Inc()
			s.metrics.LastConfirmedMint.SetToCurrentTime()
		}
		s.logger.Info().
			Str("attempt", a.ID).
			Str("account", a.Account).
			Str("tx", a.Tx.Hash).
			Str("uri", a.MetadataURI).
			Msg("mint confirmed")
	default:
		s.fail(a, domain.FailureTransactionReverted, "transaction reverted on chain")
	}
}

// timedPin pins the attempt's media asset with stage timing.
func (s *Submitter) timedPin(ctx context.Context, stage string, a *domain.Attempt) pinning.Result {
	start := time.Now()
	result := s.media.PinFile(ctx, pinning.Asset{
		Name:        a.Input.Name,
		ContentType: a.Input.ContentType,
		Data:        a.Input.Image,
	})
	if s.metrics != nil {
		s.metrics.PinDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		if result.Success {
			s.metrics.PinnedBytes.Add(float64(len(a.Input.Image)))
		}
	}
	s.observePin(stage, result)
	return result
}

func (s *Submitter) observePin(stage string, result pinning.Result) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	s.metrics.PinRequests.WithLabelValues(stage, outcome).Inc()
}

// transition moves the attempt along a legal edge and notifies the
// observer. An illegal edge is a programming error and panics in tests
// long before production; here it is logged and refused.
func (s *Submitter) transition(a *domain.Attempt, to domain.State) {
	if !domain.CanTransition(a.State, to) {
		s.logger.Error().
			Str("attempt", a.ID).
			Str("from", string(a.State)).
			Str("to", string(to)).
			Msg("illegal state transition refused")
		return
	}
	a.State = to
	s.notify(a)
}

// fail records the terminal failure and notifies the observer.
func (s *Submitter) fail(a *domain.Attempt, reason domain.FailureReason, message string) {
	a.Failure = &domain.Failure{Reason: reason, Message: message}
	a.State = domain.StateFailed
	a.FinishedAt = time.Now()

	if s.metrics != nil {
		s.metrics.AttemptsFinished.WithLabelValues("failed").Inc()
		s.metrics.AttemptFailures.WithLabelValues(string(reason)).Inc()
	}
	s.logger.Warn().
		Str("attempt", a.ID).
		Str("account", a.Account).
		Str("reason", string(reason)).
		Str("message", message).
		Msg("mint attempt failed")

	s.notify(a)
}

func (s *Submitter) notify(a *domain.Attempt) {
	if s.observer != nil {
		s.observer(a.Snapshot())
	}
}

// persist records the terminal attempt for the dashboards.
func (s *Submitter) persist(ctx context.Context, a *domain.Attempt) {
	if s.attempts == nil {
		return
	}
	snap := a.Snapshot()
	if err := s.attempts.Insert(ctx, &snap); err != nil {
		s.logger.Error().Err(err).Str("attempt", a.ID).Msg("persist attempt")
	}
}

func (s *Submitter) acquire(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[string]struct{})
	}
	if _, busy := s.inFlight[account]; busy {
		return ErrAttemptInFlight
	}
	s.inFlight[account] = struct{}{}
	return nil
}

func (s *Submitter) release(account string) {
	s.mu.Lock()
	delete(s.inFlight, account)
	s.mu.Unlock()
}

// submissionFailure maps a wallet submission error to its failure reason.
func submissionFailure(err error) domain.FailureReason {
	switch {
	case errors.Is(err, wallet.ErrContractAddressInvalid):
		return domain.FailureContractAddressInvalid
	case errors.Is(err, wallet.ErrSubmissionRejected):
		return domain.FailureSubmissionRejected
	case errors.Is(err, wallet.ErrUserRejected):
		return domain.FailureUserRejected
	case errors.Is(err, wallet.ErrWalletUnavailable), errors.Is(err, wallet.ErrNotConnected):
		return domain.FailureWalletUnavailable
	default:
		return domain.FailureNetwork
	}
}
