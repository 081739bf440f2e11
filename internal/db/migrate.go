package db

import (
	"context"
	"fmt"

	"github.com/router-for-me/InvoiceDrafter/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables backing the settings container.
func Migrate(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if errMigrate := conn.WithContext(ctx).AutoMigrate(&models.Setting{}); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
