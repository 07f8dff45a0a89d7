package entitlement

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

// PaymentDetails keeps the ledger facts behind an entitlement for audit.
type PaymentDetails struct {
	From            string
	To              string
	BlockNumber     uint64
	ContractAddress string
	RawValue        *big.Int
	TxTimestamp     time.Time
}

// Entitlement is premium access granted to an identity until expiresAt.
type Entitlement struct {
	identity  Identity
	txHash    string
	network   vo.Network
	currency  vo.Currency
	amount    decimal.Decimal
	paidAt    time.Time
	expiresAt time.Time
	details   PaymentDetails
}

// NewEntitlement creates an entitlement paid at paidAt and valid until
// expiresAt.
func NewEntitlement(
	identity Identity,
	txHash string,
	network vo.Network,
	currency vo.Currency,
	amount decimal.Decimal,
	paidAt time.Time,
	expiresAt time.Time,
	details PaymentDetails,
) (*Entitlement, error) {
	if identity.fid == 0 {
		return nil, ErrFIDRequired
	}
	txHash = strings.ToLower(strings.TrimSpace(txHash))
	if txHash == "" {
		return nil, ErrTxHashRequired
	}
	if !network.IsValid() {
		return nil, fmt.Errorf("invalid network: %s", network)
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	if !expiresAt.After(paidAt) {
		return nil, ErrInvalidPeriod
	}

	return &Entitlement{
		identity:  identity,
		txHash:    txHash,
		network:   network,
		currency:  currency,
		amount:    amount,
		paidAt:    paidAt.UTC(),
		expiresAt: expiresAt.UTC(),
		details:   details,
	}, nil
}

// ReconstructEntitlement rebuilds an entitlement from storage without the
// creation-time period check, so that historical rows always load.
func ReconstructEntitlement(
	identity Identity,
	txHash string,
	network vo.Network,
	currency vo.Currency,
	amount decimal.Decimal,
	paidAt, expiresAt time.Time,
	details PaymentDetails,
) (*Entitlement, error) {
	if identity.fid == 0 {
		return nil, ErrFIDRequired
	}
	if txHash == "" {
		return nil, ErrTxHashRequired
	}
	return &Entitlement{
		identity:  identity,
		txHash:    txHash,
		network:   network,
		currency:  currency,
		amount:    amount,
		paidAt:    paidAt.UTC(),
		expiresAt: expiresAt.UTC(),
		details:   details,
	}, nil
}

func (e *Entitlement) Identity() Identity      { return e.identity }
func (e *Entitlement) TxHash() string          { return e.txHash }
func (e *Entitlement) Network() vo.Network     { return e.network }
func (e *Entitlement) Currency() vo.Currency   { return e.currency }
func (e *Entitlement) Amount() decimal.Decimal { return e.amount }
func (e *Entitlement) PaidAt() time.Time       { return e.paidAt }
func (e *Entitlement) ExpiresAt() time.Time    { return e.expiresAt }
func (e *Entitlement) Details() PaymentDetails { return e.details }

// IsActive reports whether now is strictly before the expiry.
func (e *Entitlement) IsActive(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// IsExpired is the negation of IsActive.
func (e *Entitlement) IsExpired(now time.Time) bool {
	return !e.IsActive(now)
}
