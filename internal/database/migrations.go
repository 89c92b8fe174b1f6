package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Student{},
		&models.Staff{},
		&models.Subject{},
		&models.LeaveRequest{},
		&models.Feedback{},
		&models.StudentResult{},
		&models.Holiday{},
		&models.Notification{},
		&models.RateCounter{},
	)
}

// SeedData inserts the system sentinel account that owns broadcast notifications.
// The unique index on accounts.email keeps it single even if seeding races.
func SeedData(db *gorm.DB) error {
	sentinel := models.Account{
		Email:     models.SystemAccountEmail,
		FirstName: "System",
		Role:      models.RoleSystem,
		IsActive:  true,
	}
	return db.Where(models.Account{Email: sentinel.Email}).
		Attrs(sentinel).
		FirstOrCreate(&models.Account{}).Error
}
