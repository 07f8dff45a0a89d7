package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

const (
	walletA = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	walletB = "0x27b1fdb04752bbc536007a920d24acb045561c26"
)

var paidAt = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func mustIdentity(t *testing.T, fid uint64, wallet string) Identity {
	t.Helper()
	id, err := NewIdentity(fid, wallet)
	require.NoError(t, err)
	return id
}

func mustEntitlement(t *testing.T, id Identity, txHash string, paid time.Time) *Entitlement {
	t.Helper()
	e, err := NewEntitlement(id, txHash, vo.NetworkBase, "USDC", decimal.NewFromInt(5), paid, paid.AddDate(0, 1, 0), PaymentDetails{})
	require.NoError(t, err)
	return e
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity(42, "0x8BA1F109551BD432803012645AC136DDD64DBA72")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id.FID())
	assert.Equal(t, walletA, id.Wallet())
	assert.Equal(t, []string{"fid:42", "wallet:" + walletA}, id.LockKeys())

	_, err = NewIdentity(0, walletA)
	assert.ErrorIs(t, err, ErrFIDRequired)

	_, err = NewIdentity(42, "0xnothex")
	assert.ErrorIs(t, err, ErrInvalidWallet)
}

func TestIdentity_Collides(t *testing.T) {
	base := mustIdentity(t, 1, walletA)

	assert.True(t, base.Collides(mustIdentity(t, 1, walletB)))
	assert.True(t, base.Collides(mustIdentity(t, 2, walletA)))
	assert.False(t, base.Collides(mustIdentity(t, 2, walletB)))
	assert.True(t, base.Equal(mustIdentity(t, 1, walletA)))
	assert.False(t, base.Equal(mustIdentity(t, 1, walletB)))
}

func TestNewEntitlement_Validation(t *testing.T) {
	id := mustIdentity(t, 7, walletA)
	amount := decimal.NewFromInt(5)

	_, err := NewEntitlement(id, " ", vo.NetworkBase, "USDC", amount, paidAt, paidAt.Add(time.Hour), PaymentDetails{})
	assert.ErrorIs(t, err, ErrTxHashRequired)

	_, err = NewEntitlement(id, "0xabc", vo.NetworkBase, "USDC", amount, paidAt, paidAt, PaymentDetails{})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = NewEntitlement(id, "0xabc", "polygon", "USDC", amount, paidAt, paidAt.Add(time.Hour), PaymentDetails{})
	assert.Error(t, err)

	_, err = NewEntitlement(Identity{}, "0xabc", vo.NetworkBase, "USDC", amount, paidAt, paidAt.Add(time.Hour), PaymentDetails{})
	assert.ErrorIs(t, err, ErrFIDRequired)

	e, err := NewEntitlement(id, "0xABC", vo.NetworkBase, "USDC", amount, paidAt, paidAt.Add(time.Hour), PaymentDetails{})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", e.TxHash())
}

func TestEntitlement_IsActiveFlipsAtExpiry(t *testing.T) {
	e := mustEntitlement(t, mustIdentity(t, 7, walletA), "0xabc", paidAt)
	expiresAt := e.ExpiresAt()

	assert.True(t, e.IsActive(expiresAt.Add(-time.Nanosecond)))
	assert.False(t, e.IsActive(expiresAt))
	assert.True(t, e.IsExpired(expiresAt.Add(time.Second)))
}

func TestSelectForIdentity(t *testing.T) {
	lookup := mustIdentity(t, 1, walletA)

	byFid := mustEntitlement(t, mustIdentity(t, 1, walletB), "0x1", paidAt)
	byWallet := mustEntitlement(t, mustIdentity(t, 2, walletA), "0x2", paidAt.Add(time.Hour))
	exact := mustEntitlement(t, mustIdentity(t, 1, walletA), "0x3", paidAt.Add(-time.Hour))
	unrelated := mustEntitlement(t, mustIdentity(t, 3, "0xde709f2102306220921060314715629080e2fb77"), "0x4", paidAt.Add(2*time.Hour))

	assert.Same(t, exact, SelectForIdentity([]*Entitlement{byFid, byWallet, exact, unrelated}, lookup))
	assert.Same(t, byWallet, SelectForIdentity([]*Entitlement{byFid, byWallet, unrelated}, lookup))
	assert.Nil(t, SelectForIdentity([]*Entitlement{unrelated}, lookup))
}

type stubRepository struct {
	entitlement *Entitlement
	err         error
}

func (s *stubRepository) Upsert(ctx context.Context, e *Entitlement) (*Entitlement, error) { return e, nil }
func (s *stubRepository) GetByIdentity(ctx context.Context, identity Identity) (*Entitlement, error) {
	return s.entitlement, s.err
}
func (s *stubRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestIsActive(t *testing.T) {
	id := mustIdentity(t, 7, walletA)
	e := mustEntitlement(t, id, "0xabc", paidAt)

	active, err := IsActive(context.Background(), &stubRepository{entitlement: e}, id, paidAt.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = IsActive(context.Background(), &stubRepository{entitlement: e}, id, e.ExpiresAt())
	require.NoError(t, err)
	assert.False(t, active)

	active, err = IsActive(context.Background(), &stubRepository{err: ErrEntitlementNotFound}, id, paidAt)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = IsActive(context.Background(), &stubRepository{err: assert.AnError}, id, paidAt)
	assert.ErrorIs(t, err, assert.AnError)
}
