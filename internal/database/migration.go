package database

import (
	"fmt"

	"github.com/RichardCTT/Portfolio-Management/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AssetType{},
		&models.Asset{},
		&models.Transaction{},
		&models.PriceDaily{},
		&models.OperationLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
