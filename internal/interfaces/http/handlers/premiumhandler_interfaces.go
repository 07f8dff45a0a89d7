package handlers

import (
	"context"

	"github.com/castpass/castpass/internal/application/payment/dto"
)

// premiumService is implemented by payment.VerificationService.
type premiumService interface {
	Verify(ctx context.Context, fid uint64, wallet, network string) (*dto.VerificationResult, error)
	Status(ctx context.Context, fid uint64, wallet string) (*dto.PremiumStatus, error)
}
