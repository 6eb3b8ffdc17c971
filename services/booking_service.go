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

// BookingService runs the desk (room) reservation lifecycle: availability
// against existing bookings, time-based pricing, check-in/check-out with
// add-on charge accrual, and settlement through the payment ledger.
type BookingService struct {
	payments *PaymentService
}

func NewBookingService() *BookingService {
	return &BookingService{payments: NewPaymentService()}
}

// CreateBookingInput describes a new desk booking for a student or walk-in.
type CreateBookingInput struct {
	BranchID         uint
	RoomID           uint
	StudentID        *uint
	CustomerName     string
	ReservedByUserID uint
	StartTime        time.Time
	EndTime          time.Time
}

// CheckAvailability reports whether a room is free over [start, end).
// Half-open windows: a booking ending exactly at start does not conflict.
func (s *BookingService) CheckAvailability(roomID uint, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, fmt.Errorf("%w: %s to %s", ledger.ErrInvalidWindow, start, end)
	}
	var overlapping int64
	err := database.DB.Model(&models.WorkspaceBooking{}).
		Where("room_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			roomID, models.BookingStatusCancelled, end, start).
		Count(&overlapping).Error
	if err != nil {
		return false, err
	}
	return overlapping == 0, nil
}

// CreateBooking reserves a room. The room row is locked before the overlap
// check so a concurrent booking for the same room waits and then sees this
// one - the check and the insert are one unit. The room's hourly rate is
// snapshotted onto the booking.
func (s *BookingService) CreateBooking(in CreateBookingInput) (*models.WorkspaceBooking, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: %s to %s", ledger.ErrInvalidWindow, in.StartTime, in.EndTime)
	}

	var booking *models.WorkspaceBooking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, in.RoomID).Error; err != nil {
			return fmt.Errorf("%w: room %d", ledger.ErrNotFound, in.RoomID)
		}
		if room.Status != "available" {
			return fmt.Errorf("%w: room %q is under %s", ledger.ErrSlotUnavailable, room.RoomName, room.Status)
		}

		var overlapping int64
		if err := tx.Model(&models.WorkspaceBooking{}).
			Where("room_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
				in.RoomID, models.BookingStatusCancelled, in.EndTime, in.StartTime).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return fmt.Errorf("%w: room %q already booked in that window", ledger.ErrSlotUnavailable, room.RoomName)
		}

		total := ledger.DeskCost(in.StartTime, in.EndTime, room.HourlyRate)
		booking = &models.WorkspaceBooking{
			BranchID:         room.BranchID,
			RoomID:           in.RoomID,
			StudentID:        in.StudentID,
			CustomerName:     in.CustomerName,
			ReservedByUserID: in.ReservedByUserID,
			StartTime:        in.StartTime,
			EndTime:          in.EndTime,
			HourlyRate:       room.HourlyRate,
			AddOnAmount:      decimal.Zero,
			TotalAmount:      total,
			PaidAmount:       decimal.Zero,
			PaymentStatus:    ledger.DeriveStatus(total, decimal.Zero, false),
			Status:           models.BookingStatusPending,
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"room_id":      booking.RoomID,
		"total_amount": booking.TotalAmount.String(),
	}).Info("workspace booking created")

	return booking, nil
}

// Confirm moves a pending booking to confirmed. Once activated, a zero
// balance reads as unpaid rather than pending.
func (s *BookingService) Confirm(bookingID uint) (*models.WorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.WorkspaceBooking
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
		notifyBookingConfirmed(tx, booking.StudentID, "room")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// notifyBookingConfirmed writes a notification row for the booking student's
// login account, if one is linked. Best effort.
func notifyBookingConfirmed(tx *gorm.DB, studentID *uint, what string) {
	if studentID == nil {
		return
	}
	var student models.Student
	if err := tx.First(&student, *studentID).Error; err != nil || student.UserID == nil {
		return
	}
	notification := models.Notification{
		UserID:  *student.UserID,
		Title:   "Booking confirmed",
		Message: fmt.Sprintf("Your %s booking has been confirmed.", what),
		Type:    "info",
	}
	if err := tx.Create(&notification).Error; err != nil {
		logrus.WithError(err).Warn("failed to create booking notification")
	}
}

// CheckIn records the actual arrival time, separate from the booked window.
// Add-on charges only accrue between check-in and check-out.
func (s *BookingService) CheckIn(bookingID uint) (*models.WorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.WorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
			return fmt.Errorf("%w: check-in from %s", ledger.ErrInvalidTransition, booking.Status)
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

// AddCharge accrues an add-on cost (internet, laptop, cafeteria) against a
// desk session. Only valid while checked in; the charge raises the booking's
// total and the payment status is re-derived from the unchanged paid amount.
func (s *BookingService) AddCharge(bookingID uint, kind string, amount decimal.Decimal, addedBy uint, note string) (*models.WorkspaceBooking, error) {
	switch kind {
	case models.ChargeKindInternet, models.ChargeKindLaptop, models.ChargeKindCafeteria:
	default:
		return nil, fmt.Errorf("%w: unknown charge kind %q", ledger.ErrInvalidAmount, kind)
	}
	amount = ledger.Normalize(amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: charge %s", ledger.ErrInvalidAmount, amount)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.WorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusInProgress {
			return fmt.Errorf("%w: charges accrue only while checked in, booking is %s",
				ledger.ErrInvalidTransition, booking.Status)
		}

		charge := models.BookingCharge{
			BookingID:     bookingID,
			Kind:          kind,
			Amount:        amount,
			AddedByUserID: addedBy,
			Note:          note,
		}
		if err := tx.Create(&charge).Error; err != nil {
			return err
		}

		newAddOn := ledger.Normalize(booking.AddOnAmount.Add(amount))
		newTotal := ledger.Normalize(booking.TotalAmount.Add(amount))
		return tx.Model(&booking).Updates(map[string]interface{}{
			"add_on_amount":  newAddOn,
			"total_amount":   newTotal,
			"payment_status": ledger.DeriveStatus(newTotal, booking.PaidAmount, true),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// CheckOut completes the session and reconciles the final cost against
// actual usage: hours between check-in and check-out at the snapshotted
// rate, plus accrued add-ons. The final total never drops below what was
// already collected - any give-back is an explicit refund row, not a silent
// ledger edit.
func (s *BookingService) CheckOut(bookingID uint) (*models.WorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.WorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			return fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
		}
		if booking.Status != models.BookingStatusInProgress || booking.CheckInAt == nil {
			return fmt.Errorf("%w: check-out from %s", ledger.ErrInvalidTransition, booking.Status)
		}

		now := time.Now()
		finalTotal := ledger.Normalize(ledger.DeskCost(*booking.CheckInAt, now, booking.HourlyRate).Add(booking.AddOnAmount))
		if finalTotal.LessThan(booking.PaidAmount) {
			finalTotal = booking.PaidAmount
		}

		return tx.Model(&booking).Updates(map[string]interface{}{
			"status":         models.BookingStatusCompleted,
			"check_out_at":   now,
			"total_amount":   finalTotal,
			"payment_status": ledger.DeriveStatus(finalTotal, booking.PaidAmount, true),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(bookingID)
}

// Cancel releases the slot. Only possible before check-in; a session in
// progress checks out instead.
func (s *BookingService) Cancel(bookingID uint) (*models.WorkspaceBooking, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.WorkspaceBooking
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

// RecordPayment posts a payment against a desk booking through the ledger.
func (s *BookingService) RecordPayment(bookingID uint, amount decimal.Decimal, method string, processedBy uint, note string) (*models.WorkspaceBooking, error) {
	_, err := s.payments.Post(PostPaymentInput{
		Owner:             ledger.ForDeskBooking(bookingID),
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

// Get returns one desk booking with its room and charges preloaded.
func (s *BookingService) Get(bookingID uint) (*models.WorkspaceBooking, error) {
	var booking models.WorkspaceBooking
	if err := database.DB.Preload("Room").Preload("Charges").First(&booking, bookingID).Error; err != nil {
		return nil, fmt.Errorf("%w: booking %d", ledger.ErrNotFound, bookingID)
	}
	return &booking, nil
}
