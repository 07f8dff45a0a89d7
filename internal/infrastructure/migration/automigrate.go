package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/castpass/castpass/internal/infrastructure/persistence/models"
	"github.com/castpass/castpass/internal/shared/logger"
)

// AutoMigrateModels lists every persisted model
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.EntitlementModel{},
		&models.ConsumedTransactionModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the models. Used for
// throwaway databases where versioned scripts add nothing.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.gorm")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(AutoMigrateModels()))
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
