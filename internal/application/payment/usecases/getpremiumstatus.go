package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/domain/entitlement"
	apperrors "github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/logger"
)

type GetPremiumStatusQuery struct {
	FID           uint64
	WalletAddress string
}

// GetPremiumStatusUseCase reads the stored entitlement of an identity. It
// never queries the ledger.
type GetPremiumStatusUseCase struct {
	repo   entitlement.Repository
	now    func() time.Time
	logger logger.Interface
}

func NewGetPremiumStatusUseCase(
	repo entitlement.Repository,
	clock func() time.Time,
	logger logger.Interface,
) *GetPremiumStatusUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &GetPremiumStatusUseCase{
		repo:   repo,
		now:    clock,
		logger: logger,
	}
}

func (uc *GetPremiumStatusUseCase) Execute(ctx context.Context, query GetPremiumStatusQuery) (*dto.PremiumStatus, error) {
	identity, err := entitlement.NewIdentity(query.FID, query.WalletAddress)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	record, err := uc.repo.GetByIdentity(ctx, identity)
	if errors.Is(err, entitlement.ErrEntitlementNotFound) {
		return &dto.PremiumStatus{IsPremium: false}, nil
	}
	if err != nil {
		uc.logger.Errorw("failed to load entitlement",
			"fid", identity.FID(),
			"wallet", identity.Wallet(),
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to load premium status")
	}

	return &dto.PremiumStatus{
		IsPremium:    record.IsActive(uc.now()),
		Subscription: dto.ToSubscriptionDTO(record),
	}, nil
}
