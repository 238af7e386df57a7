package services

import (
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// CleanupService runs the periodic maintenance sweep: expired sessions are
// purged, and login history past the retention window is archived to object
// storage before it is deleted.
type CleanupService struct {
	appContext.DefaultService

	interval  time.Duration
	retention time.Duration
	batchSize int

	sessionSvc *SessionService
	archiveSvc *ArchiveService
	sqlSvc     SqlService
	monSvc     *MonitoringService

	stop chan struct{}
}

const CLEANUP_SVC = "cleanup_svc"

func (svc CleanupService) Id() string {
	return CLEANUP_SVC
}

func (svc *CleanupService) Configure(ctx *appContext.Context) error {
	svc.interval = durationFromEnv("CLEANUP_INTERVAL", time.Hour)
	svc.retention = durationFromEnv("AUDIT_RETENTION", 90*24*time.Hour)
	svc.batchSize = intFromEnv("CLEANUP_BATCH_SIZE", 1000)
	svc.stop = make(chan struct{})
	return svc.DefaultService.Configure(ctx)
}

func (svc *CleanupService) Start() error {
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.archiveSvc = svc.Service(ARCHIVE_SVC).(*ArchiveService)

	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}
	if monSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = monSvc
	}

	go svc.run()
	return nil
}

func (svc *CleanupService) Shutdown() {
	close(svc.stop)
}

func (svc *CleanupService) run() {
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.Sweep()
		case <-svc.stop:
			return
		}
	}
}

// Sweep runs one full maintenance pass.
func (svc *CleanupService) Sweep() {
	if _, err := svc.sessionSvc.CleanupExpired(); err != nil {
		log.WithError(err).Warn("session cleanup failed")
	}

	svc.sweepHistory()

	cutoff := time.Now().Add(-svc.retention)
	if removed, err := svc.sqlSvc.History().DeleteRateLimitEventsBefore(cutoff); err != nil {
		log.WithError(err).Warn("rate limit event cleanup failed")
	} else if removed > 0 {
		log.WithField("removed", removed).Info("aged rate limit events purged")
	}

	if svc.monSvc != nil {
		if blocked, err := svc.sqlSvc.History().CountActiveIPBlocks(time.Now()); err != nil {
			log.WithError(err).Warn("failed to count active ip blocks")
		} else {
			svc.monSvc.SetActiveIPBlocks(blocked)
		}
	}
}

// sweepHistory archives then deletes login history older than the retention
// window, one batch at a time until the backlog drains. Each delete covers
// exactly the rows just archived, so an upload failure leaves everything in
// place for the next sweep; data is never deleted unarchived.
func (svc *CleanupService) sweepHistory() {
	cutoff := time.Now().Add(-svc.retention)
	var total int64

	for {
		rows, err := svc.sqlSvc.History().ListHistoryBefore(cutoff, svc.batchSize)
		if err != nil {
			log.WithError(err).Warn("failed to list aged login history")
			return
		}
		if len(rows) == 0 {
			break
		}

		if svc.archiveSvc.Enabled() {
			objectName, err := svc.archiveSvc.ArchiveLoginHistory(rows)
			if err != nil {
				log.WithError(err).Warn("failed to archive login history, keeping rows")
				return
			}
			log.WithFields(log.Fields{
				"rows":   len(rows),
				"object": objectName,
			}).Info("login history archived")
		}

		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}

		removed, err := svc.sqlSvc.History().DeleteHistoryByIDs(ids)
		if err != nil {
			log.WithError(err).Warn("failed to purge aged login history")
			return
		}
		total += removed

		if len(rows) < svc.batchSize {
			break
		}
	}

	if total > 0 {
		log.WithField("removed", total).Info("aged login history purged")
	}
}
