package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/castpass/castpass/internal/shared/logger"
)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator handles creation of new migration files
type Generator struct {
	scriptsPath string
	now         func() time.Time
	logger      logger.Interface
}

// NewGenerator creates a generator writing below scriptsPath, which holds
// one sub-directory per dialect
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		now:         time.Now,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes an empty goose script named name for every dialect
// and returns the created paths
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !migrationNamePattern.MatchString(name) {
		return nil, fmt.Errorf("migration name must be snake_case, got %q", name)
	}

	now := g.now()
	fileName := fmt.Sprintf("%s_%s.sql", now.Format("20060102150405"), name)

	var created []string
	for _, dialect := range []string{"sqlite", "mysql"} {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, []byte(migrationTemplate(name, dialect, now)), 0o644); err != nil {
			return created, fmt.Errorf("failed to create %s migration: %w", dialect, err)
		}
		created = append(created, path)
	}

	g.logger.Infow("migration files created successfully", "files", created)
	return created, nil
}

func migrationTemplate(name, dialect string, now time.Time) string {
	return fmt.Sprintf(`-- Migration: %s (%s)
-- Created: %s

-- +goose Up

-- +goose Down

`, name, dialect, now.Format("2006-01-02 15:04:05"))
}
