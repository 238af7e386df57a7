package seeders

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

// MessageSeeder loads the default reason code texts.
type MessageSeeder struct {
	db *gorm.DB
}

func NewMessageSeeder(db *gorm.DB) *MessageSeeder {
	return &MessageSeeder{db: db}
}

func (s *MessageSeeder) SeedMessages() error {
	defaults := map[string]string{
		shared.CodeInvalidCredentials:  "Invalid login ID or password",
		shared.CodeAccountDisabled:     "Account is disabled",
		shared.CodeTokenExpired:        "Token has expired",
		shared.CodeTokenInvalid:        "Token is invalid",
		shared.CodeRefreshTokenInvalid: "Invalid or expired refresh token",
		shared.CodeRateLimitExceeded:   "Too many requests, please try again later",
		shared.CodeUserNotFound:        "User not found",
		shared.CodeDuplicateLoginID:    "Login ID is already taken",
		shared.CodeDuplicateEmail:      "Email is already registered",
		shared.CodeValidationFailed:    "Validation failed",
		shared.CodeInternalError:       "Internal server error",
	}

	for code, content := range defaults {
		var existing model.MessageCode
		err := s.db.Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		id, _ := uuid.NewV7()
		row := model.MessageCode{
			ID:      id.String(),
			Code:    code,
			Content: content,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
		log.Printf("Created message code: %s", code)
	}

	return nil
}
