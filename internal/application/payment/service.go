// Package payment exposes premium payment verification to the transport
// layers.
package payment

import (
	"context"
	"time"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/application/payment/ledger"
	"github.com/castpass/castpass/internal/application/payment/usecases"
	"github.com/castpass/castpass/internal/domain/entitlement"
	domainpayment "github.com/castpass/castpass/internal/domain/payment"
	"github.com/castpass/castpass/internal/shared/logger"
)

// VerificationService groups the premium use cases behind one entry point.
type VerificationService struct {
	verifyUC  *usecases.VerifyPremiumPaymentUseCase
	statusUC  *usecases.GetPremiumStatusUseCase
	compactUC *usecases.CompactEntitlementsUseCase
}

// NewVerificationService wires the use cases. A nil clock means time.Now.
func NewVerificationService(
	config *domainpayment.Config,
	ledgerClient ledger.Client,
	repo entitlement.Repository,
	clock func() time.Time,
	log logger.Interface,
) *VerificationService {
	return &VerificationService{
		verifyUC:  usecases.NewVerifyPremiumPaymentUseCase(config, ledgerClient, repo, clock, log.Named("verify")),
		statusUC:  usecases.NewGetPremiumStatusUseCase(repo, clock, log.Named("status")),
		compactUC: usecases.NewCompactEntitlementsUseCase(repo, clock, log.Named("compact")),
	}
}

// Verify looks for a qualifying payment from wallet on network and grants
// premium access to (fid, wallet) when one is found.
func (s *VerificationService) Verify(ctx context.Context, fid uint64, wallet, network string) (*dto.VerificationResult, error) {
	return s.verifyUC.Execute(ctx, usecases.VerifyPremiumPaymentCommand{
		FID:           fid,
		WalletAddress: wallet,
		Network:       network,
	})
}

// Status reports the stored entitlement without contacting the ledger.
func (s *VerificationService) Status(ctx context.Context, fid uint64, wallet string) (*dto.PremiumStatus, error) {
	return s.statusUC.Execute(ctx, usecases.GetPremiumStatusQuery{
		FID:           fid,
		WalletAddress: wallet,
	})
}

// Compact removes entitlements that expired more than retention ago.
func (s *VerificationService) Compact(ctx context.Context, retention time.Duration) (*dto.CompactionResult, error) {
	return s.compactUC.Execute(ctx, usecases.CompactEntitlementsCommand{Retention: retention})
}
