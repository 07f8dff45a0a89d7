package entitlement

import "time"

// ConsumedTransaction is the consumed-index entry of a transaction: the
// identity it last granted access to and the term it was first granted for.
// A zero term means the entry predates term tracking.
type ConsumedTransaction struct {
	Owner     Identity
	PaidAt    time.Time
	ExpiresAt time.Time
}

// Regrant decides what storing e means when e's transaction is already
// consumed. current is the record answering e's identity, or nil.
//
// The transaction keeps the term it was first granted for, whichever
// colliding identity presents it. When current already is this grant for
// this exact identity it is returned with unchanged set and nothing must be
// written.
func (c ConsumedTransaction) Regrant(e, current *Entitlement) (grant *Entitlement, unchanged bool, err error) {
	if !c.Owner.Collides(e.identity) {
		return nil, false, ErrTransactionConsumed
	}
	if current != nil && current.identity.Equal(e.identity) &&
		current.network == e.network && current.txHash == e.txHash {
		return current, true, nil
	}
	if c.ExpiresAt.IsZero() {
		return nil, false, ErrTransactionConsumed
	}

	carried := *e
	carried.paidAt = c.PaidAt.UTC()
	carried.expiresAt = c.ExpiresAt.UTC()
	return &carried, false, nil
}
