package repository

import (
	"context"
	"sync"
	"time"

	"github.com/castpass/castpass/internal/domain/entitlement"
)

type consumedKey struct {
	network string
	txHash  string
}

// MemoryEntitlementRepository is an in-process entitlement.Repository. It
// backs database.driver=memory and tests; contents are lost on restart.
type MemoryEntitlementRepository struct {
	mu       sync.RWMutex
	records  []*entitlement.Entitlement
	consumed map[consumedKey]entitlement.ConsumedTransaction
}

func NewMemoryEntitlementRepository() *MemoryEntitlementRepository {
	return &MemoryEntitlementRepository{
		consumed: make(map[consumedKey]entitlement.ConsumedTransaction),
	}
}

func (r *MemoryEntitlementRepository) Upsert(ctx context.Context, e *entitlement.Entitlement) (*entitlement.Entitlement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := consumedKey{network: e.Network().String(), txHash: e.TxHash()}
	grant := e
	if consumed, ok := r.consumed[key]; ok {
		current := entitlement.SelectForIdentity(r.records, e.Identity())
		regrant, unchanged, err := consumed.Regrant(e, current)
		if err != nil {
			return nil, err
		}
		if unchanged {
			return regrant, nil
		}
		grant = regrant
	}

	kept := r.records[:0]
	for _, existing := range r.records {
		if !existing.Identity().Collides(grant.Identity()) {
			kept = append(kept, existing)
		}
	}
	r.records = append(kept, grant)

	entry, ok := r.consumed[key]
	if !ok {
		entry = entitlement.ConsumedTransaction{PaidAt: grant.PaidAt(), ExpiresAt: grant.ExpiresAt()}
	}
	entry.Owner = grant.Identity()
	r.consumed[key] = entry
	return grant, nil
}

func (r *MemoryEntitlementRepository) GetByIdentity(ctx context.Context, identity entitlement.Identity) (*entitlement.Entitlement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := entitlement.SelectForIdentity(r.records, identity)
	if selected == nil {
		return nil, entitlement.ErrEntitlementNotFound
	}
	return selected, nil
}

func (r *MemoryEntitlementRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	kept := r.records[:0]
	for _, existing := range r.records {
		if existing.ExpiresAt().Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	r.records = kept
	return removed, nil
}

// Len reports how many records are stored.
func (r *MemoryEntitlementRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
