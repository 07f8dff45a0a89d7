package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/castpass/castpass/internal/domain/entitlement"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	"github.com/castpass/castpass/internal/infrastructure/repository"
	apperrors "github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/logger"
)

func TestGetPremiumStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryEntitlementRepository()
	identity := mustIdentity(42, payerAddress)
	paidAt := fixedNow.Add(-time.Hour)
	e, err := entitlement.NewEntitlement(identity, "0xa", vo.NetworkBase, "USDC",
		decimal.NewFromInt(5), paidAt, paidAt.AddDate(0, 1, 0), entitlement.PaymentDetails{})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, e)
	require.NoError(t, err)

	t.Run("no record", func(t *testing.T) {
		uc := NewGetPremiumStatusUseCase(repo, clock, logger.NewDiscardLogger())
		status, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 1, WalletAddress: otherAddress})
		require.NoError(t, err)
		assert.False(t, status.IsPremium)
		assert.Nil(t, status.Subscription)
	})

	t.Run("active", func(t *testing.T) {
		uc := NewGetPremiumStatusUseCase(repo, clock, logger.NewDiscardLogger())
		status, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 42, WalletAddress: payerAddress})
		require.NoError(t, err)
		assert.True(t, status.IsPremium)
		require.NotNil(t, status.Subscription)
		assert.Equal(t, "0xa", status.Subscription.TxHash)
		assert.Equal(t, "5", status.Subscription.Amount)
	})

	t.Run("expired record is still reported", func(t *testing.T) {
		expiry := paidAt.AddDate(0, 1, 0)
		uc := NewGetPremiumStatusUseCase(repo, func() time.Time { return expiry }, logger.NewDiscardLogger())
		status, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 42, WalletAddress: payerAddress})
		require.NoError(t, err)
		assert.False(t, status.IsPremium)
		assert.NotNil(t, status.Subscription)
	})

	t.Run("lookup by colliding wallet", func(t *testing.T) {
		uc := NewGetPremiumStatusUseCase(repo, clock, logger.NewDiscardLogger())
		status, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 99, WalletAddress: payerAddress})
		require.NoError(t, err)
		assert.True(t, status.IsPremium)
	})

	t.Run("invalid wallet", func(t *testing.T) {
		uc := NewGetPremiumStatusUseCase(repo, clock, logger.NewDiscardLogger())
		_, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 42, WalletAddress: "wallet"})
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		failing := new(mockEntitlementRepository)
		failing.On("GetByIdentity", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		uc := NewGetPremiumStatusUseCase(failing, clock, logger.NewDiscardLogger())
		_, err := uc.Execute(ctx, GetPremiumStatusQuery{FID: 42, WalletAddress: payerAddress})
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
	})
}
