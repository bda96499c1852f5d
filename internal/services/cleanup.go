package services

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gitfolio/gitfolio/pkg/logger"
)

// invitePurgeAfter is how long an expired invite is kept before the
// janitor removes the row. Expiry itself is enforced lazily on lookup;
// this is retention, not enforcement.
const invitePurgeAfter = 30 * 24 * time.Hour

// CleanupService periodically purges long-expired invite rows.
type CleanupService struct {
	invites       *InviteService
	cronScheduler *cron.Cron
}

func NewCleanupService(invites *InviteService) *CleanupService {
	return &CleanupService{invites: invites}
}

// StartScheduler runs the purge once a day.
func (s *CleanupService) StartScheduler() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("30 3 * * *", s.run); err != nil {
		logger.Errorf("[Cleanup] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Cleanup] Scheduler started")
}

func (s *CleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *CleanupService) run() {
	if _, err := s.invites.PurgeExpired(invitePurgeAfter); err != nil {
		logger.Errorf("[Cleanup] Invite purge failed: %v", err)
	}
}
