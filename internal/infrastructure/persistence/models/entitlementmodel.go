package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/castpass/castpass/internal/shared/constants"
)

// EntitlementModel is the persistence model of a premium entitlement.
// Unique indexes on fid and wallet_address keep at most one row per
// colliding key.
type EntitlementModel struct {
	ID            uint      `gorm:"primarykey"`
	FID           uint64    `gorm:"column:fid;not null;uniqueIndex:idx_premium_entitlements_fid"`
	WalletAddress string    `gorm:"not null;size:42;uniqueIndex:idx_premium_entitlements_wallet"`
	TxHash        string    `gorm:"not null;size:66;index:idx_premium_entitlements_tx_hash"`
	Network       string    `gorm:"not null;size:20"`
	Currency      string    `gorm:"not null;size:16"`
	Amount        string    `gorm:"not null;size:78"`
	PaidAt        time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_premium_entitlements_expires_at"`
	Metadata      datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (EntitlementModel) TableName() string {
	return constants.TablePremiumEntitlements
}

// EntitlementMetadata is the JSON document stored in EntitlementModel.Metadata.
type EntitlementMetadata struct {
	From            string    `json:"from"`
	To              string    `json:"to"`
	BlockNumber     uint64    `json:"block_number"`
	ContractAddress string    `json:"contract_address,omitempty"`
	RawValue        string    `json:"raw_value"`
	TxTimestamp     time.Time `json:"tx_timestamp"`
}
