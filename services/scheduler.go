package services

import (
	"time"

	"brightpath_go/config"
	"brightpath_go/database"
	"brightpath_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the background maintenance jobs: a nightly ledger
// reconciliation audit and a periodic sweep that cancels stale unpaid
// pending bookings. Both jobs only use the same service operations the API
// exposes, so every state change goes through the normal validation path.
type Scheduler struct {
	cron           *cron.Cron
	reconciliation *ReconciliationService
	bookings       *BookingService
	sharedBookings *SharedBookingService
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		reconciliation: NewReconciliationService(),
		bookings:       NewBookingService(),
		sharedBookings: NewSharedBookingService(),
	}
}

// Start registers and launches the cron jobs.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc("0 3 * * *", s.runLedgerAudit); err != nil {
		logrus.WithError(err).Error("failed to register ledger audit job")
	}
	if _, err := s.cron.AddFunc("*/15 * * * *", s.sweepStaleBookings); err != nil {
		logrus.WithError(err).Error("failed to register stale booking sweep")
	}
	s.cron.Start()
	logrus.Info("scheduler started")
}

// Stop halts the cron runner. Running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runLedgerAudit() {
	inconsistencies, err := s.reconciliation.AuditAll()
	if err != nil {
		logrus.WithError(err).Error("ledger audit failed")
		return
	}
	if len(inconsistencies) == 0 {
		logrus.Info("ledger audit clean")
		return
	}
	for _, inc := range inconsistencies {
		logrus.WithFields(logrus.Fields{
			"owner_type":  inc.Owner.Type,
			"owner_id":    inc.Owner.ID,
			"stored_paid": inc.StoredPaid.String(),
			"ledger_sum":  inc.LedgerSum.String(),
			"reason":      inc.Reason,
		}).Error("ledger inconsistency")
	}
}

// sweepStaleBookings cancels pending bookings that were never paid or
// confirmed within the configured window, releasing their slots.
func (s *Scheduler) sweepStaleBookings() {
	maxAge := time.Duration(config.AppConfig.StaleBookingMinutes) * time.Minute
	if maxAge <= 0 {
		return
	}
	cutoff := time.Now().Add(-maxAge)

	var deskBookings []models.WorkspaceBooking
	if err := database.DB.
		Where("status = ? AND paid_amount = 0 AND created_at < ?", models.BookingStatusPending, cutoff).
		Find(&deskBookings).Error; err != nil {
		logrus.WithError(err).Error("stale desk booking query failed")
		return
	}
	for _, booking := range deskBookings {
		if _, err := s.bookings.Cancel(booking.ID); err != nil {
			logrus.WithError(err).WithField("booking_id", booking.ID).Warn("failed to cancel stale booking")
		}
	}

	var sharedBookings []models.SharedWorkspaceBooking
	if err := database.DB.
		Where("status = ? AND paid_amount = 0 AND created_at < ?", models.BookingStatusPending, cutoff).
		Find(&sharedBookings).Error; err != nil {
		logrus.WithError(err).Error("stale shared booking query failed")
		return
	}
	for _, booking := range sharedBookings {
		if _, err := s.sharedBookings.Cancel(booking.ID); err != nil {
			logrus.WithError(err).WithField("booking_id", booking.ID).Warn("failed to cancel stale shared booking")
		}
	}

	if n := len(deskBookings) + len(sharedBookings); n > 0 {
		logrus.WithField("count", n).Info("stale bookings cancelled")
	}
}
