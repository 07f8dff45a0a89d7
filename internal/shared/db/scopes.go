package db

import (
	"time"

	"gorm.io/gorm"
)

// CollidingIdentity selects rows owned by fid OR by wallet. Rows are
// expected to carry fid and wallet_address columns.
func CollidingIdentity(fid uint64, wallet string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("fid = ? OR wallet_address = ?", fid, wallet)
	}
}

// ExpiredBefore selects rows whose expires_at is strictly before cutoff.
func ExpiredBefore(cutoff time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ?", cutoff)
	}
}
