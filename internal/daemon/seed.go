package daemon

import (
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed a default admin when the user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// change the password right after the first login
		db.Create(
			&models.User{
				Active:     true,
				Email:      "admin@borntodev.com",
				Password:   models.HashPassword("changeme"),
				Name:       "Administrator",
				Role:       models.RoleAdmin,
				AuthSource: models.AuthSourceLocal,
			},
		)
	}
}
