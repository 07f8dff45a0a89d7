package dto

import (
	"time"

	"github.com/castpass/castpass/internal/domain/entitlement"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

// VerifyPremiumRequest is the body of a verification call
type VerifyPremiumRequest struct {
	FID           uint64 `json:"fid" binding:"required,gt=0"`
	WalletAddress string `json:"walletAddress" binding:"required,eth_addr"`
	Network       string `json:"network" binding:"required,network"`
}

// TransactionDTO is the transfer that satisfied a verification
type TransactionDTO struct {
	Hash      string    `json:"hash" yaml:"hash"`
	From      string    `json:"from" yaml:"from"`
	To        string    `json:"to" yaml:"to"`
	Value     string    `json:"value" yaml:"value"` // whole units, e.g. "5" for 5 USDC
	Currency  string    `json:"currency" yaml:"currency"`
	Network   string    `json:"network" yaml:"network"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// SubscriptionDTO describes the stored entitlement of an identity
type SubscriptionDTO struct {
	FID           uint64    `json:"fid" yaml:"fid"`
	WalletAddress string    `json:"walletAddress" yaml:"wallet_address"`
	TxHash        string    `json:"txHash" yaml:"tx_hash"`
	Network       string    `json:"network" yaml:"network"`
	Currency      string    `json:"currency" yaml:"currency"`
	Amount        string    `json:"amount" yaml:"amount"`
	PaidAt        time.Time `json:"paidAt" yaml:"paid_at"`
	ExpiresAt     time.Time `json:"expiresAt" yaml:"expires_at"`
}

// VerificationResult is the outcome of a verification attempt. Only
// Verified=true grants premium access.
type VerificationResult struct {
	Verified     bool             `json:"verified" yaml:"verified"`
	Status       string           `json:"status" yaml:"status"`
	AttemptID    string           `json:"attemptId" yaml:"attempt_id"`
	Transaction  *TransactionDTO  `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Currency     string           `json:"currency,omitempty" yaml:"currency,omitempty"`
	Error        string           `json:"error,omitempty" yaml:"error,omitempty"`
	Retryable    bool             `json:"retryable" yaml:"retryable"`
	Subscription *SubscriptionDTO `json:"subscription,omitempty" yaml:"subscription,omitempty"`
}

// PremiumStatus answers whether an identity currently has premium access
type PremiumStatus struct {
	IsPremium    bool             `json:"isPremium" yaml:"is_premium"`
	Subscription *SubscriptionDTO `json:"subscription,omitempty" yaml:"subscription,omitempty"`
}

// CompactionResult reports a compaction run
type CompactionResult struct {
	Cutoff  time.Time `json:"cutoff" yaml:"cutoff"`
	Removed int64     `json:"removed" yaml:"removed"`
}

// ToSubscriptionDTO converts a domain entitlement
func ToSubscriptionDTO(e *entitlement.Entitlement) *SubscriptionDTO {
	if e == nil {
		return nil
	}
	return &SubscriptionDTO{
		FID:           e.Identity().FID(),
		WalletAddress: e.Identity().Wallet(),
		TxHash:        e.TxHash(),
		Network:       e.Network().String(),
		Currency:      e.Currency().String(),
		Amount:        e.Amount().String(),
		PaidAt:        e.PaidAt(),
		ExpiresAt:     e.ExpiresAt(),
	}
}

// ToTransactionDTO converts a matched ledger transfer. nativeDecimals is used
// for transfers that carry no token decimals.
func ToTransactionDTO(tx *payment.Transaction, currency vo.Currency, network vo.Network, nativeDecimals int32) *TransactionDTO {
	if tx == nil {
		return nil
	}
	return &TransactionDTO{
		Hash:      tx.Hash,
		From:      tx.From,
		To:        tx.To,
		Value:     tx.Amount(nativeDecimals).String(),
		Currency:  currency.String(),
		Network:   network.String(),
		Timestamp: tx.Timestamp,
	}
}
