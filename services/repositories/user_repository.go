package repositories

import (
	"time"

	"github.com/lac-hong-legacy/authguard/model"
	"gorm.io/gorm"
)

// UserRepository handles account rows.
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *UserRepository) Create(user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByLoginID(loginID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("login_id = ?", loginID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) LoginIDExists(loginID string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("login_id = ?", loginID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordLogin updates the login statistics after a successful authentication.
func (r *UserRepository) RecordLogin(userID, ip string, at time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login_at": at,
		"last_login_ip": ip,
		"login_count":   gorm.Expr("login_count + 1"),
		"updated_at":    at,
	}).Error
}
