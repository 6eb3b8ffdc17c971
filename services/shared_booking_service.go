package services

import (
	"fmt"
	"time"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharedBookingService runs the shared-workspace reservation lifecycle.
// Unlike desk rooms, a shared workspace admits many bookings over the same
// window as long as the combined head count stays within MaxCapacity.
// CurrentOccupancy tracks people physically checked in and never leaves
// [0, MaxCapacity].
type SharedBookingService struct {
	payments *PaymentService
}

func NewSharedBookingService() *SharedBookingService {
	return &SharedBookingService{payments: NewPaymentService()}
}

// CreateSharedBookingInput describes a new shared-workspace booking.
type CreateSharedBookingInput struct {
	BranchID          uint
	SharedWorkspaceID uint
	StudentID         *uint
	CustomerName      string
	ReservedByUserID  uint
	PeopleCount       int
	StartTime         time.Time
	EndTime           time.Time
}

// CheckAvailability reports whether a shared workspace can seat peopleCount
// more over [start, end): the head count of overlapping non-cancelled
// bookings plus the new party must fit MaxCapacity.
func (s *SharedBookingService) CheckAvailability(workspaceID uint, start, end time.Time, peopleCount int) (bool, error) {
	if !end.After(start) {
		return false, fmt.Errorf("%w: %s to %s", ledger.ErrInvalidWindow, start, end)
	}

	var workspace models.SharedWorkspace
	if err := database.DB.First(&workspace, workspaceID).Error; err != nil {
		return false, fmt.Errorf("%w: shared workspace %d", ledger.ErrNotFound, workspaceID)
	}

	booked, err := s.overlappingHeadCount(database.DB, workspaceID, start, end)
	if err != nil {
		return false, err
	}
	return booked+peopleCount <= workspace.MaxCapacity, nil
}

// CreateBooking reserves seats. The workspace row is locked before the
// head-count check so two receptionists cannot both fill the last seats.
// Total = hours x rate x people, with the rate snapshotted.
func (s *SharedBookingService) CreateBooking(in CreateSharedBookingInput) (*models.SharedWorkspaceBooking, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: %s to %s", ledger.ErrInvalidWindow, in.StartTime, in.EndTime)
	}
	if in.PeopleCount <= 0 {
		return nil, fmt.Errorf("%w: people count must be positive", ledger.ErrInvalidAmount)
	}

	var booking *models.SharedWorkspaceBooking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var workspace models.SharedWorkspace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workspace, in.SharedWorkspaceID).Error; err != nil {
			return fmt.Errorf("%w: shared workspace %d", ledger.ErrNotFound, in.SharedWorkspaceID)
		}
		if workspace.Status != "available" {
			return fmt.Errorf("%w: %q is under %s", ledger.ErrSlotUnavailable, workspace.Name, workspace.Status)
		}

		booked, err := s.overlappingHeadCount(tx, in.SharedWorkspaceID, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if booked+in.PeopleCount > workspace.MaxCapacity {
			return fmt.Errorf("%w: %q has %d of %d seats booked, requested %d",
				ledger.ErrCapacityExceeded, workspace.Name, booked, workspace.MaxCapacity, in.PeopleCount)
		}

		total := ledger.SharedCost(in.StartTime, in.EndTime, workspace.HourlyRate, in.PeopleCount)
		booking = &models.SharedWorkspaceBooking{
			BranchID:          workspace.BranchID,
			SharedWorkspaceID: in.SharedWorkspaceID,
			StudentID:         in.StudentID,
			CustomerName:      in.CustomerName,
			ReservedByUserID:  in.ReservedByUserID,
			PeopleCount:       in.PeopleCount,
			StartTime:         in.StartTime,
			EndTime:           in.EndTime,
			HourlyRate:        workspace.HourlyRate,
			TotalAmount:       total,
			PaidAmount:        decimal.Zero,
			PaymentStatus:     ledger.DeriveStatus(total, decimal.Zero, false),
			Status:            models.BookingStatusPending,
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"workspace_id": booking.SharedWorkspaceID,
		"people":       booking.PeopleCount,
		"total_amount": booking.TotalAmount.String(),
	}).Info("shared workspace booking created")

	return booking, nil
}

// Confirm moves a pending shared booking to confirmed.
func (s *SharedBookingService) Confirm(bookingID uint) (*models.SharedWorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.SharedWorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusPending {
			return fmt.Errorf("%w: confirm from %s", ledger.ErrInvalidTransition, booking.Status)
		}
		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"status":         models.BookingStatusConfirmed,
			"payment_status": ledger.DeriveStatus(booking.TotalAmount, booking.PaidAmount, true),
		}).Error; err != nil {
			return err
		}
		notifyBookingConfirmed(tx, booking.StudentID, "shared workspace")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// CheckIn raises the workspace occupancy by the party size. Rejected if it
// would push occupancy past MaxCapacity; occupancy and booking status move
// in one transaction.
func (s *SharedBookingService) CheckIn(bookingID uint) (*models.SharedWorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.SharedWorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
			return fmt.Errorf("%w: check-in from %s", ledger.ErrInvalidTransition, booking.Status)
		}

		var workspace models.SharedWorkspace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workspace, booking.SharedWorkspaceID).Error; err != nil {
			return err
		}
		if workspace.CurrentOccupancy+booking.PeopleCount > workspace.MaxCapacity {
			return fmt.Errorf("%w: %q is at %d of %d",
				ledger.ErrCapacityExceeded, workspace.Name, workspace.CurrentOccupancy, workspace.MaxCapacity)
		}
		if err := tx.Model(&workspace).
			Update("current_occupancy", workspace.CurrentOccupancy+booking.PeopleCount).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&booking).Updates(map[string]interface{}{
			"status":         models.BookingStatusInProgress,
			"check_in_at":    now,
			"payment_status": ledger.DeriveStatus(booking.TotalAmount, booking.PaidAmount, true),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// CheckOut lowers the workspace occupancy by the party size and completes
// the booking. Occupancy cannot go negative: only a checked-in booking can
// check out, and it decrements exactly what its check-in added.
func (s *SharedBookingService) CheckOut(bookingID uint) (*models.SharedWorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.SharedWorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusInProgress {
			return fmt.Errorf("%w: check-out from %s", ledger.ErrInvalidTransition, booking.Status)
		}

		var workspace models.SharedWorkspace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workspace, booking.SharedWorkspaceID).Error; err != nil {
			return err
		}
		occupancy := workspace.CurrentOccupancy - booking.PeopleCount
		if occupancy < 0 {
			occupancy = 0
		}
		if err := tx.Model(&workspace).Update("current_occupancy", occupancy).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&booking).Updates(map[string]interface{}{
			"status":       models.BookingStatusCompleted,
			"check_out_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// Cancel releases the seats before check-in. Occupancy is untouched -
// nothing was checked in.
func (s *SharedBookingService) Cancel(bookingID uint) (*models.SharedWorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.SharedWorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
			return fmt.Errorf("%w: cancel from %s", ledger.ErrInvalidTransition, booking.Status)
		}

		updates := map[string]interface{}{"status": models.BookingStatusCancelled}
		if booking.PaidAmount.IsZero() {
			updates["payment_status"] = ledger.StatusCancelled
		}
		return tx.Model(&booking).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// RecordPayment posts a payment against a shared booking through the ledger.
func (s *SharedBookingService) RecordPayment(bookingID uint, amount decimal.Decimal, method string, processedBy uint, note string) (*models.SharedWorkspaceBooking, error) {
	_, err := s.payments.Post(PostPaymentInput{
		Owner:             ledger.ForSharedBooking(bookingID),
		Amount:            amount,
		Method:            method,
		ProcessedByUserID: processedBy,
		Note:              note,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// Get returns one shared booking with its workspace preloaded.
func (s *SharedBookingService) Get(bookingID uint) (*models.SharedWorkspaceBooking, error) {
	var booking models.SharedWorkspaceBooking
	if err := database.DB.Preload("SharedWorkspace").First(&booking, bookingID).Error; err != nil {
		return nil, fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
	}
	return &booking, nil
}

// overlappingHeadCount sums PeopleCount across non-cancelled bookings that
// intersect [start, end).
func (s *SharedBookingService) overlappingHeadCount(tx *gorm.DB, workspaceID uint, start, end time.Time) (int, error) {
	var bookings []models.SharedWorkspaceBooking
	err := tx.
		Where("shared_workspace_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			workspaceID, models.BookingStatusCancelled, end, start).
		Find(&bookings).Error
	if err != nil {
		return 0, err
	}
	count := 0
	for _, b := range bookings {
		count += b.PeopleCount
	}
	return count, nil
}
