package cron

import (
	"context"

	"github.com/jobreadyai/backend/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceCronJobs runs the periodic housekeeping tasks.
func StartMaintenanceCronJobs(userRepo *repository.UserRepository) {
	c := cron.New()

	// Expired password-reset tokens are dead weight once their hour is up.
	c.AddFunc("@hourly", func() {
		cleared, err := userRepo.ClearExpiredResetTokens(context.Background())
		if err != nil {
			logrus.WithError(err).Error("ClearExpiredResetTokens failed")
			return
		}
		if cleared > 0 {
			logrus.WithField("count", cleared).Info("Cleared expired reset tokens")
		}
	})

	c.Start()
}
