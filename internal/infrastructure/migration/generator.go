package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator writes golang-migrate up/down script pairs.
// Goose scripts are created through goose itself.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
	now         func() time.Time
}

func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.Named("migration.generator"),
		now:         time.Now,
	}
}

// CreateMigration creates <timestamp>_<name>.up.sql and .down.sql and returns their paths.
func (g *Generator) CreateMigration(name string) (string, string, error) {
	if !migrationNamePattern.MatchString(name) {
		return "", "", fmt.Errorf("invalid migration name %q: use lowercase letters, digits and underscores", name)
	}

	created := g.now()
	timestamp := created.Format("20060102150405")

	upFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%s_%s.up.sql", timestamp, name))
	downFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%s_%s.down.sql", timestamp, name))

	if err := os.MkdirAll(g.scriptsPath, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create scripts directory: %w", err)
	}

	stamp := created.Format(time.DateTime)
	if err := os.WriteFile(upFilePath, []byte(fmt.Sprintf(upTemplate, name, stamp)), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create up migration file: %w", err)
	}
	if err := os.WriteFile(downFilePath, []byte(fmt.Sprintf(downTemplate, name, stamp)), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create down migration file: %w", err)
	}

	g.logger.Infow("migration files created",
		"up_file", upFilePath,
		"down_file", downFilePath)

	return upFilePath, downFilePath, nil
}

const upTemplate = `-- Migration: %s
-- Created: %s

-- Example:
-- ALTER TABLE payments ADD COLUMN store_id VARCHAR(64) NOT NULL DEFAULT '';
`

const downTemplate = `-- Rollback Migration: %s
-- Created: %s

-- Example:
-- ALTER TABLE payments DROP COLUMN store_id;
`
