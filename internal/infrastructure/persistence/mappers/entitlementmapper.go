package mappers

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/castpass/castpass/internal/domain/entitlement"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	"github.com/castpass/castpass/internal/infrastructure/persistence/models"
	"github.com/castpass/castpass/internal/shared/mapper"
)

// EntitlementMapper handles the conversion between domain entities and persistence models
type EntitlementMapper interface {
	ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error)
	ToModel(entity *entitlement.Entitlement) (*models.EntitlementModel, error)
	ToEntities(models []*models.EntitlementModel) ([]*entitlement.Entitlement, error)
}

type entitlementMapper struct{}

func NewEntitlementMapper() EntitlementMapper {
	return &entitlementMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *entitlementMapper) ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	if model == nil {
		return nil, nil
	}

	identity, err := entitlement.NewIdentity(model.FID, model.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct identity: %w", err)
	}

	amount, err := decimal.NewFromString(model.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", model.Amount, err)
	}

	var details entitlement.PaymentDetails
	if len(model.Metadata) > 0 {
		var meta models.EntitlementMetadata
		if err := json.Unmarshal(model.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode entitlement metadata: %w", err)
		}
		details = entitlement.PaymentDetails{
			From:            meta.From,
			To:              meta.To,
			BlockNumber:     meta.BlockNumber,
			ContractAddress: meta.ContractAddress,
			TxTimestamp:     meta.TxTimestamp,
		}
		if meta.RawValue != "" {
			raw, ok := new(big.Int).SetString(meta.RawValue, 10)
			if !ok {
				return nil, fmt.Errorf("invalid stored raw value %q", meta.RawValue)
			}
			details.RawValue = raw
		}
	}

	entity, err := entitlement.ReconstructEntitlement(
		identity,
		model.TxHash,
		vo.Network(model.Network),
		vo.Currency(model.Currency),
		amount,
		model.PaidAt,
		model.ExpiresAt,
		details,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement entity: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *entitlementMapper) ToModel(entity *entitlement.Entitlement) (*models.EntitlementModel, error) {
	if entity == nil {
		return nil, nil
	}

	details := entity.Details()
	meta := models.EntitlementMetadata{
		From:            details.From,
		To:              details.To,
		BlockNumber:     details.BlockNumber,
		ContractAddress: details.ContractAddress,
		TxTimestamp:     details.TxTimestamp.UTC(),
	}
	if details.RawValue != nil {
		meta.RawValue = details.RawValue.String()
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entitlement metadata: %w", err)
	}

	return &models.EntitlementModel{
		FID:           entity.Identity().FID(),
		WalletAddress: entity.Identity().Wallet(),
		TxHash:        entity.TxHash(),
		Network:       entity.Network().String(),
		Currency:      entity.Currency().String(),
		Amount:        entity.Amount().String(),
		PaidAt:        entity.PaidAt(),
		ExpiresAt:     entity.ExpiresAt(),
		Metadata:      datatypes.JSON(raw),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *entitlementMapper) ToEntities(models []*models.EntitlementModel) ([]*entitlement.Entitlement, error) {
	entities, err := mapper.MapSliceWithError(models, m.ToEntity)
	if err != nil {
		return nil, fmt.Errorf("failed to map entitlement models: %w", err)
	}
	return entities, nil
}
