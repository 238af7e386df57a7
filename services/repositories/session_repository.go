package repositories

import (
	"time"

	"github.com/lac-hong-legacy/authguard/model"
	"gorm.io/gorm"
)

// SessionRepository handles user session rows. The single-active-session
// invariant is enforced here: Create is always preceded by DeleteActive.
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *SessionRepository) Create(session *model.UserSession) (*model.UserSession, error) {
	if session.ID == "" {
		session.ID = newID()
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteActive removes every live session row for the user. Logged-out rows
// stay untouched to preserve the audit trail.
func (r *SessionRepository) DeleteActive(userID string) error {
	return r.db.
		Where("user_id = ? AND logged_out_at IS NULL", userID).
		Delete(&model.UserSession{}).Error
}

func (r *SessionRepository) GetByRefreshToken(refreshToken string) (*model.UserSession, error) {
	var session model.UserSession
	err := r.db.
		Where("refresh_token = ? AND logged_out_at IS NULL AND expires_at > ?", refreshToken, time.Now()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetActiveByUser(userID string) (*model.UserSession, error) {
	var session model.UserSession
	err := r.db.
		Where("user_id = ? AND logged_out_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("issued_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) CountActiveByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserSession{}).
		Where("user_id = ? AND logged_out_at IS NULL AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	return count, err
}

// MarkLoggedOut records the logout time and session duration on every live
// row for the user. Zero affected rows is not an error.
func (r *SessionRepository) MarkLoggedOut(userID string, at time.Time) error {
	var sessions []model.UserSession
	err := r.db.Where("user_id = ? AND logged_out_at IS NULL", userID).Find(&sessions).Error
	if err != nil {
		return err
	}

	for _, session := range sessions {
		updates := map[string]interface{}{
			"logged_out_at": at,
			"duration_sec":  int64(at.Sub(session.IssuedAt).Seconds()),
			"updated_at":    at,
		}
		if err := r.db.Model(&model.UserSession{}).Where("id = ?", session.ID).Updates(updates).Error; err != nil {
			return err
		}
	}

	return nil
}

// DeleteExpired reaps rows whose expiry has passed. Returns how many rows
// were removed.
func (r *SessionRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&model.UserSession{})
	return res.RowsAffected, res.Error
}
