package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/models"
)

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.DietProfile{},
		&models.DietPlan{},
	}
}

// RunMigrations brings the schema up to date
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
