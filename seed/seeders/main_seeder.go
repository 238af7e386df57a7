package seeders

import "gorm.io/gorm"

// MainSeeder runs the individual seeders.
type MainSeeder struct {
	admin    *AdminSeeder
	messages *MessageSeeder
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{
		admin:    NewAdminSeeder(db),
		messages: NewMessageSeeder(db),
	}
}

func (s *MainSeeder) SeedAll() error {
	if err := s.admin.SeedAdmin(); err != nil {
		return err
	}
	return s.messages.SeedMessages()
}

func (s *MainSeeder) SeedAdmin() error {
	return s.admin.SeedAdmin()
}

func (s *MainSeeder) SeedMessages() error {
	return s.messages.SeedMessages()
}
