package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/castpass/castpass/internal/domain/entitlement"
	"github.com/castpass/castpass/internal/infrastructure/persistence/mappers"
	"github.com/castpass/castpass/internal/infrastructure/persistence/models"
	"github.com/castpass/castpass/internal/shared/db"
	apperrors "github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/keylock"
	"github.com/castpass/castpass/internal/shared/logger"
)

// EntitlementRepositoryImpl implements entitlement.Repository on gorm.
// Writes for one identity are serialised by locker and applied in a single
// database transaction.
type EntitlementRepositoryImpl struct {
	db        *gorm.DB
	txManager *db.TransactionManager
	locker    keylock.Locker
	mapper    mappers.EntitlementMapper
	logger    logger.Interface
}

// NewEntitlementRepository creates a new entitlement repository instance.
// A nil locker falls back to an in-process one.
func NewEntitlementRepository(gdb *gorm.DB, locker keylock.Locker, logger logger.Interface) entitlement.Repository {
	if locker == nil {
		locker = keylock.NewMemoryLocker()
	}
	return &EntitlementRepositoryImpl{
		db:        gdb,
		txManager: db.NewTransactionManager(gdb),
		locker:    locker,
		mapper:    mappers.NewEntitlementMapper(),
		logger:    logger,
	}
}

// Upsert replaces every record colliding with e's identity by e and marks
// e's transaction as consumed. The consumed check runs under the identity
// lock inside the write transaction.
func (r *EntitlementRepositoryImpl) Upsert(ctx context.Context, e *entitlement.Entitlement) (*entitlement.Entitlement, error) {
	identity := e.Identity()

	release, err := r.locker.Lock(ctx, identity.LockKeys()...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock identity %s: %w", identity, err)
	}
	defer release()

	var (
		stored    *entitlement.Entitlement
		unchanged bool
		replaced  int64
	)
	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := r.txManager.GetTx(ctx)

		grant, same, err := r.resolveConsumed(ctx, tx, e)
		if err != nil {
			return err
		}
		if same {
			stored, unchanged = grant, true
			return nil
		}

		model, err := r.mapper.ToModel(grant)
		if err != nil {
			return err
		}

		result := tx.Scopes(db.CollidingIdentity(identity.FID(), identity.Wallet())).
			Delete(&models.EntitlementModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove colliding entitlements: %w", result.Error)
		}
		replaced = result.RowsAffected

		if err := tx.Create(model).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return entitlement.ErrConcurrentWrite
			}
			return fmt.Errorf("failed to create entitlement: %w", err)
		}

		paidAt, expiresAt := grant.PaidAt(), grant.ExpiresAt()
		consumed := &models.ConsumedTransactionModel{
			Network:       grant.Network().String(),
			TxHash:        grant.TxHash(),
			FID:           identity.FID(),
			WalletAddress: identity.Wallet(),
			PaidAt:        &paidAt,
			ExpiresAt:     &expiresAt,
		}
		// the term of an existing row is never overwritten
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "network"}, {Name: "tx_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"fid", "wallet_address", "updated_at"}),
		}).Create(consumed).Error; err != nil {
			return fmt.Errorf("failed to record consumed transaction: %w", err)
		}

		stored = grant
		return nil
	})
	if err != nil {
		if !errors.Is(err, entitlement.ErrTransactionConsumed) {
			r.logger.Errorw("failed to upsert entitlement",
				"fid", identity.FID(),
				"wallet", identity.Wallet(),
				"tx_hash", e.TxHash(),
				"error", err,
			)
		}
		return nil, err
	}

	if unchanged {
		r.logger.Debugw("transaction already granted to identity, keeping entitlement",
			"fid", identity.FID(),
			"tx_hash", e.TxHash(),
		)
		return stored, nil
	}

	r.logger.Infow("entitlement upserted",
		"fid", identity.FID(),
		"wallet", identity.Wallet(),
		"tx_hash", stored.TxHash(),
		"replaced", replaced,
		"expires_at", stored.ExpiresAt(),
	)
	return stored, nil
}

// resolveConsumed returns what to store for e. A transaction seen for the
// first time is stored as is.
func (r *EntitlementRepositoryImpl) resolveConsumed(ctx context.Context, tx *gorm.DB, e *entitlement.Entitlement) (*entitlement.Entitlement, bool, error) {
	var row models.ConsumedTransactionModel
	err := tx.Where("network = ? AND tx_hash = ?", e.Network().String(), e.TxHash()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up consumed transaction: %w", err)
	}

	owner, err := entitlement.NewIdentity(row.FID, row.WalletAddress)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt consumed transaction row %s: %w", row.TxHash, err)
	}
	consumed := entitlement.ConsumedTransaction{Owner: owner}
	if row.PaidAt != nil && row.ExpiresAt != nil {
		consumed.PaidAt, consumed.ExpiresAt = *row.PaidAt, *row.ExpiresAt
	}

	current, err := r.GetByIdentity(ctx, e.Identity())
	if err != nil && !errors.Is(err, entitlement.ErrEntitlementNotFound) {
		return nil, false, err
	}
	return consumed.Regrant(e, current)
}

// GetByIdentity returns the record answering a lookup for identity.
func (r *EntitlementRepositoryImpl) GetByIdentity(ctx context.Context, identity entitlement.Identity) (*entitlement.Entitlement, error) {
	var rows []*models.EntitlementModel
	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.CollidingIdentity(identity.FID(), identity.Wallet())).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	entities, err := r.mapper.ToEntities(rows)
	if err != nil {
		r.logger.Errorw("failed to map entitlements", "fid", identity.FID(), "error", err)
		return nil, err
	}

	selected := entitlement.SelectForIdentity(entities, identity)
	if selected == nil {
		return nil, entitlement.ErrEntitlementNotFound
	}
	return selected, nil
}

// DeleteExpiredBefore removes records whose expiry is before cutoff.
func (r *EntitlementRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ExpiredBefore(cutoff.UTC())).
		Delete(&models.EntitlementModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired entitlements: %w", result.Error)
	}
	return result.RowsAffected, nil
}
