package entitlement

import (
	"context"
	"errors"
	"time"
)

// Repository is the durable entitlement store.
type Repository interface {
	// Upsert removes every record colliding with e's identity (same fid OR
	// same wallet), stores e and marks e's transaction as consumed, as one
	// atomic step, and returns the stored record. A transaction that is
	// already consumed is resolved by ConsumedTransaction.Regrant: it never
	// earns a new term, and ErrTransactionConsumed is returned when it
	// belongs to a non-colliding identity.
	Upsert(ctx context.Context, e *Entitlement) (*Entitlement, error)

	// GetByIdentity returns the record for identity or ErrEntitlementNotFound.
	GetByIdentity(ctx context.Context, identity Identity) (*Entitlement, error)

	// DeleteExpiredBefore removes records whose expiry is before cutoff and
	// reports how many were removed. The consumed-transaction index is kept.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// IsActive loads the identity's record and reports whether it is active at now.
func IsActive(ctx context.Context, repo Repository, identity Identity, now time.Time) (bool, error) {
	e, err := repo.GetByIdentity(ctx, identity)
	if errors.Is(err, ErrEntitlementNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.IsActive(now), nil
}

// SelectForIdentity picks the record that answers a lookup for identity
// among colliding candidates: an exact fid and wallet match first, then the
// most recently paid. It returns nil when nothing collides.
func SelectForIdentity(candidates []*Entitlement, identity Identity) *Entitlement {
	var best *Entitlement
	for _, c := range candidates {
		if c == nil || !c.identity.Collides(identity) {
			continue
		}
		if c.identity.Equal(identity) {
			return c
		}
		if best == nil || c.paidAt.After(best.paidAt) {
			best = c
		}
	}
	return best
}
