package models

import (
	"time"

	"github.com/castpass/castpass/internal/shared/constants"
)

// ConsumedTransactionModel records which identity a transaction granted
// premium access to and the term it was first granted for, keyed by network
// and hash. Rows outlive compaction of the entitlement they created.
type ConsumedTransactionModel struct {
	Network       string `gorm:"primarykey;size:20"`
	TxHash        string `gorm:"primarykey;size:66"`
	FID           uint64 `gorm:"column:fid;not null;index:idx_consumed_transactions_fid"`
	WalletAddress string `gorm:"not null;size:42"`
	PaidAt        *time.Time
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (ConsumedTransactionModel) TableName() string {
	return constants.TableConsumedTransactions
}
