package usecases

import (
	"context"
	"time"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/domain/entitlement"
	apperrors "github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/logger"
)

// CompactEntitlementsCommand removes records that expired more than
// Retention ago.
type CompactEntitlementsCommand struct {
	Retention time.Duration
}

type CompactEntitlementsUseCase struct {
	repo   entitlement.Repository
	now    func() time.Time
	logger logger.Interface
}

func NewCompactEntitlementsUseCase(
	repo entitlement.Repository,
	clock func() time.Time,
	logger logger.Interface,
) *CompactEntitlementsUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &CompactEntitlementsUseCase{
		repo:   repo,
		now:    clock,
		logger: logger,
	}
}

func (uc *CompactEntitlementsUseCase) Execute(ctx context.Context, cmd CompactEntitlementsCommand) (*dto.CompactionResult, error) {
	if cmd.Retention < 0 {
		return nil, apperrors.NewValidationError("retention cannot be negative")
	}

	cutoff := uc.now().Add(-cmd.Retention).UTC()
	removed, err := uc.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("failed to compact entitlements", "cutoff", cutoff, "error", err)
		return nil, apperrors.NewInternalError("failed to compact entitlements")
	}

	uc.logger.Infow("compacted expired entitlements", "cutoff", cutoff, "removed", removed)
	return &dto.CompactionResult{Cutoff: cutoff, Removed: removed}, nil
}
