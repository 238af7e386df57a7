package seeders

import (
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

// AdminSeeder creates the bootstrap admin account.
type AdminSeeder struct {
	db *gorm.DB
}

func NewAdminSeeder(db *gorm.DB) *AdminSeeder {
	return &AdminSeeder{db: db}
}

func (s *AdminSeeder) SeedAdmin() error {
	var existing model.User
	if err := s.db.Where("role = ?", shared.RoleAdmin).First(&existing).Error; err == nil {
		log.Println("Admin user already exists, skipping admin seeding")
		return nil
	}

	password := os.Getenv("ADMIN_SEED_PASSWORD")
	if password == "" {
		password = "ChangeMe!2024"
		log.Println("ADMIN_SEED_PASSWORD not set, using default; change it after first login")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	id, _ := uuid.NewV7()
	admin := model.User{
		ID:       id.String(),
		LoginID:  "admin",
		Password: string(hashed),
		Name:     "Administrator",
		Email:    "admin@localhost",
		Role:     shared.RoleAdmin,
		Enabled:  true,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Created admin user")
	return nil
}
