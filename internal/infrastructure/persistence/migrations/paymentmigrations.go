package migrations

import (
	"github.com/orris-inc/f2fpay/internal/infrastructure/persistence/models"

	"gorm.io/gorm"
)

// MigratePaymentTables creates the payments table with gorm AutoMigrate.
// Used for sqlite development databases and tests; MySQL uses the SQL scripts.
func MigratePaymentTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PaymentModel{},
	)
}
