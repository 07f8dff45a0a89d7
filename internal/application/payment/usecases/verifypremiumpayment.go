package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/application/payment/ledger"
	"github.com/castpass/castpass/internal/domain/entitlement"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	apperrors "github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/goroutine"
	"github.com/castpass/castpass/internal/shared/logger"
)

const (
	MsgLedgerQueryFailed   = "ledger query failed, please try again"
	MsgNoQualifyingPayment = "no qualifying payment found"
	MsgTransactionUsed     = "transaction already used"
	MsgPersistenceFailed   = "failed to record entitlement, please try again"
)

var errLegAborted = errors.New("ledger query aborted")

// VerifyPremiumPaymentCommand asks to grant premium access to an identity
// for a payment made on network.
type VerifyPremiumPaymentCommand struct {
	FID           uint64
	WalletAddress string
	Network       string
}

type legResult struct {
	txs []payment.Transaction
	err error
}

// VerifyPremiumPaymentUseCase scans the receiving address for a qualifying
// payment from the identity's wallet and records the entitlement.
type VerifyPremiumPaymentUseCase struct {
	config  *payment.Config
	ledger  ledger.Client
	repo    entitlement.Repository
	matcher *payment.Matcher
	now     func() time.Time
	newID   func() string
	logger  logger.Interface
}

// NewVerifyPremiumPaymentUseCase wires the use case. A nil clock means
// time.Now.
func NewVerifyPremiumPaymentUseCase(
	config *payment.Config,
	ledgerClient ledger.Client,
	repo entitlement.Repository,
	clock func() time.Time,
	logger logger.Interface,
) *VerifyPremiumPaymentUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &VerifyPremiumPaymentUseCase{
		config:  config,
		ledger:  ledgerClient,
		repo:    repo,
		matcher: payment.NewMatcher(config.ReceivingAddress(), clock),
		now:     clock,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Execute runs one verification attempt. Input problems are returned as
// validation errors; every other outcome, including ledger and storage
// failures, is reported through the result.
func (uc *VerifyPremiumPaymentUseCase) Execute(ctx context.Context, cmd VerifyPremiumPaymentCommand) (*dto.VerificationResult, error) {
	identity, err := entitlement.NewIdentity(cmd.FID, cmd.WalletAddress)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	network, err := vo.NewNetwork(strings.ToLower(strings.TrimSpace(cmd.Network)))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	params, ok := uc.config.Network(network)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("network %s is not configured", network))
	}

	attempt := payment.NewAttempt(uc.newID(), uc.now())
	log := uc.logger.With(
		"attempt_id", attempt.ID(),
		"fid", identity.FID(),
		"wallet", identity.Wallet(),
		"network", network,
	)

	if err := attempt.StartScanning(); err != nil {
		return nil, err
	}
	log.Infow("verification started", "status", attempt.Status())

	native, token := uc.scan(ctx, network, log)

	for _, req := range uc.config.Requirements(network) {
		txs := token.txs
		if req.Native {
			txs = native.txs
		}
		tx := uc.matcher.FindMatch(txs, identity.Wallet(), req, uc.config.Window())
		if tx == nil {
			continue
		}
		return uc.grant(ctx, attempt, identity, params, req, tx, log), nil
	}

	if native.err != nil || token.err != nil {
		uc.finish(attempt, vo.VerificationStatusError, MsgLedgerQueryFailed, log)
		return failedResult(attempt, MsgLedgerQueryFailed, true), nil
	}

	uc.finish(attempt, vo.VerificationStatusUnmatched, MsgNoQualifyingPayment, log)
	return &dto.VerificationResult{
		Status:    attempt.Status().String(),
		AttemptID: attempt.ID(),
		Error:     MsgNoQualifyingPayment,
	}, nil
}

// scan issues both ledger queries concurrently and waits for both. A failed
// or panicking leg yields no transactions and a non-nil error.
func (uc *VerifyPremiumPaymentUseCase) scan(ctx context.Context, network vo.Network, log logger.Interface) (native, token legResult) {
	address := uc.config.ReceivingAddress()

	var wg sync.WaitGroup
	wg.Add(2)
	goroutine.SafeGo(log, "ledger-native", func() {
		defer wg.Done()
		native.err = errLegAborted
		txs, err := uc.ledger.ListNativeTransfers(ctx, network, address)
		native = legResult{txs: txs, err: err}
	})
	goroutine.SafeGo(log, "ledger-token", func() {
		defer wg.Done()
		token.err = errLegAborted
		txs, err := uc.ledger.ListTokenTransfers(ctx, network, address)
		token = legResult{txs: txs, err: err}
	})
	wg.Wait()

	if native.err != nil {
		log.Warnw("native transfer query failed", "error", native.err)
		native.txs = nil
	}
	if token.err != nil {
		log.Warnw("token transfer query failed", "error", token.err)
		token.txs = nil
	}
	log.Debugw("ledger scan finished",
		"native_count", len(native.txs),
		"token_count", len(token.txs),
	)
	return native, token
}

func (uc *VerifyPremiumPaymentUseCase) grant(
	ctx context.Context,
	attempt *payment.Attempt,
	identity entitlement.Identity,
	params payment.NetworkParams,
	req payment.Requirement,
	tx *payment.Transaction,
	log logger.Interface,
) *dto.VerificationResult {
	log = log.With("tx_hash", tx.Hash, "currency", req.Currency)
	txDTO := dto.ToTransactionDTO(tx, req.Currency, params.Network, params.NativeDecimals)

	paidAt := uc.now()
	record, err := entitlement.NewEntitlement(
		identity,
		tx.Hash,
		params.Network,
		req.Currency,
		tx.Amount(params.NativeDecimals),
		paidAt,
		uc.config.ExpiresAt(paidAt),
		entitlement.PaymentDetails{
			From:            tx.From,
			To:              tx.To,
			BlockNumber:     tx.BlockNumber,
			ContractAddress: tx.ContractAddress,
			RawValue:        tx.Value,
			TxTimestamp:     tx.Timestamp,
		},
	)
	if err != nil {
		log.Errorw("failed to build entitlement", "error", err)
		uc.finish(attempt, vo.VerificationStatusError, err.Error(), log)
		return failedResult(attempt, err.Error(), false)
	}

	stored, err := uc.repo.Upsert(ctx, record)
	if err != nil {
		if errors.Is(err, entitlement.ErrTransactionConsumed) {
			log.Warnw("transaction consumed by another identity")
			uc.finish(attempt, vo.VerificationStatusError, MsgTransactionUsed, log)
			return failedResult(attempt, MsgTransactionUsed, false)
		}
		log.Errorw("failed to upsert entitlement", "error", err)
		uc.finish(attempt, vo.VerificationStatusError, MsgPersistenceFailed, log)
		return failedResult(attempt, MsgPersistenceFailed, true)
	}

	uc.finish(attempt, vo.VerificationStatusMatched, "", log)
	if !stored.ExpiresAt().Equal(record.ExpiresAt()) {
		log.Infow("transaction already granted, keeping its original term",
			"paid_at", stored.PaidAt(),
			"expires_at", stored.ExpiresAt(),
		)
		return matchedResult(attempt, txDTO, req.Currency, stored)
	}
	log.Infow("premium entitlement granted",
		"amount", stored.Amount().String(),
		"expires_at", stored.ExpiresAt(),
	)
	return matchedResult(attempt, txDTO, req.Currency, stored)
}

func (uc *VerifyPremiumPaymentUseCase) finish(attempt *payment.Attempt, status vo.VerificationStatus, reason string, log logger.Interface) {
	now := uc.now()
	var err error
	switch status {
	case vo.VerificationStatusMatched:
		err = attempt.Match(now)
	case vo.VerificationStatusUnmatched:
		err = attempt.NoMatch(reason, now)
	default:
		err = attempt.Fail(reason, now)
	}
	if err != nil {
		log.Errorw("invalid attempt transition", "error", err)
		return
	}
	log.Infow("verification finished",
		"status", attempt.Status(),
		"reason", reason,
		"duration", attempt.FinishedAt().Sub(attempt.StartedAt()),
	)
}

func matchedResult(attempt *payment.Attempt, tx *dto.TransactionDTO, currency vo.Currency, e *entitlement.Entitlement) *dto.VerificationResult {
	return &dto.VerificationResult{
		Verified:     true,
		Status:       attempt.Status().String(),
		AttemptID:    attempt.ID(),
		Transaction:  tx,
		Currency:     currency.String(),
		Subscription: dto.ToSubscriptionDTO(e),
	}
}

func failedResult(attempt *payment.Attempt, message string, retryable bool) *dto.VerificationResult {
	return &dto.VerificationResult{
		Status:    attempt.Status().String(),
		AttemptID: attempt.ID(),
		Error:     message,
		Retryable: retryable,
	}
}
