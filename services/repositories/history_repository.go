package repositories

import (
	"time"

	"github.com/lac-hong-legacy/authguard/model"
	"gorm.io/gorm"
)

// HistoryRepository owns the append-only audit tables (login history, rate
// limit events) and the live per-IP block records.
type HistoryRepository struct {
	BaseRepository
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== LOGIN HISTORY ====================

func (r *HistoryRepository) AppendLoginHistory(row *model.LoginHistory) error {
	if row.ID == "" {
		row.ID = newID()
	}
	return r.db.Create(row).Error
}

// CountRecentFailures returns the failed attempt count for an IP within the
// tracking window. A successful login resets the streak: only failures after
// the IP's most recent success are counted.
func (r *HistoryRepository) CountRecentFailures(ip string, since time.Time) (int64, error) {
	var lastSuccess *time.Time
	err := r.db.Model(&model.LoginHistory{}).
		Where("ip_addr = ? AND success = ?", ip, true).
		Select("MAX(created_at)").
		Scan(&lastSuccess).Error
	if err != nil {
		return 0, err
	}
	if lastSuccess != nil && lastSuccess.After(since) {
		since = *lastSuccess
	}

	var count int64
	err = r.db.Model(&model.LoginHistory{}).
		Where("ip_addr = ? AND success = ? AND created_at > ?", ip, false, since).
		Count(&count).Error
	return count, err
}

// ListHistoryBefore pages through rows older than the cutoff, for archival.
func (r *HistoryRepository) ListHistoryBefore(cutoff time.Time, limit int) ([]model.LoginHistory, error) {
	var rows []model.LoginHistory
	err := r.db.
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// DeleteHistoryByIDs removes exactly the given rows. The cleanup sweep uses
// this so only rows it has already archived are deleted.
func (r *HistoryRepository) DeleteHistoryByIDs(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Where("id IN ?", ids).Delete(&model.LoginHistory{})
	return res.RowsAffected, res.Error
}

// ==================== IP BLOCKS ====================

func (r *HistoryRepository) GetIPBlock(ip string) (*model.IPBlock, error) {
	var block model.IPBlock
	if err := r.db.Where("ip_addr = ?", ip).First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// SaveIPBlock upserts the live block record for an IP.
func (r *HistoryRepository) SaveIPBlock(block *model.IPBlock) error {
	existing, err := r.GetIPBlock(block.IPAddr)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		block.ID = newID()
		block.CreatedAt = time.Now()
		block.UpdatedAt = block.CreatedAt
		return r.db.Create(block).Error
	}

	return r.db.Model(&model.IPBlock{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
		"attempt_count": block.AttemptCount,
		"last_reason":   block.LastReason,
		"blocked_until": block.BlockedUntil,
		"updated_at":    time.Now(),
	}).Error
}

// CountActiveIPBlocks returns how many IPs are locked out at the given
// instant. Feeds the monitoring gauge.
func (r *HistoryRepository) CountActiveIPBlocks(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.IPBlock{}).
		Where("blocked_until IS NOT NULL AND blocked_until > ?", now).
		Count(&count).Error
	return count, err
}

// ClearIPBlock resets the attempt counter and lifts any active block.
func (r *HistoryRepository) ClearIPBlock(ip string) error {
	return r.db.Model(&model.IPBlock{}).Where("ip_addr = ?", ip).Updates(map[string]interface{}{
		"attempt_count": 0,
		"blocked_until": nil,
		"updated_at":    time.Now(),
	}).Error
}

// ==================== RATE LIMIT EVENTS ====================

func (r *HistoryRepository) AppendRateLimitEvent(event *model.RateLimitEvent) error {
	if event.ID == "" {
		event.ID = newID()
	}
	return r.db.Create(event).Error
}

func (r *HistoryRepository) DeleteRateLimitEventsBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&model.RateLimitEvent{})
	return res.RowsAffected, res.Error
}
