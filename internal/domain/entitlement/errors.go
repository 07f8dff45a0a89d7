package entitlement

import "errors"

var (
	// ErrEntitlementNotFound is returned when no record collides with the identity
	ErrEntitlementNotFound = errors.New("entitlement not found")

	// ErrTransactionConsumed is returned when a transaction already granted
	// entitlement to a different identity
	ErrTransactionConsumed = errors.New("transaction already used by another account")

	ErrFIDRequired    = errors.New("fid is required")
	ErrInvalidWallet  = errors.New("invalid wallet address")
	ErrTxHashRequired = errors.New("transaction hash is required")
	ErrInvalidPeriod  = errors.New("expiry must be after payment time")

	// ErrConcurrentWrite is returned when a colliding write won a race that
	// the lock did not cover, e.g. another process without a shared locker.
	ErrConcurrentWrite = errors.New("concurrent entitlement write")
)
