package services

import (
	"errors"
	"testing"
	"time"

	"brightpath_go/ledger"
	"brightpath_go/models"
)

func TestCreateBookingPricesWindow(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 3)

	svc := NewBookingService()
	booking, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, CustomerName: "Walk-in", ReservedByUserID: 1,
		StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !booking.TotalAmount.Equal(amount(t, "360.00")) {
		t.Fatalf("expected total 360.00, got %s", booking.TotalAmount)
	}
	if booking.Status != models.BookingStatusPending {
		t.Fatalf("expected pending, got %s", booking.Status)
	}
	// Not yet confirmed: zero balance reads as pending, not unpaid.
	if booking.PaymentStatus != ledger.StatusPending {
		t.Fatalf("expected payment status pending, got %s", booking.PaymentStatus)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 2)

	svc := NewBookingService()
	if _, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: end,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Overlapping window is rejected.
	_, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1,
		StartTime: start.Add(time.Hour), EndTime: end.Add(time.Hour),
	})
	if !errors.Is(err, ledger.ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// Back-to-back is fine: windows are half-open.
	if _, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1,
		StartTime: end, EndTime: end.Add(time.Hour),
	}); err != nil {
		t.Fatalf("expected boundary-touching booking to succeed, got %v", err)
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 2)

	svc := NewBookingService()
	booking, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	available, err := svc.CheckAvailability(room.ID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Fatalf("expected slot free after cancellation")
	}
}

func TestBookingInvalidWindow(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, _ := window(t, 1)

	svc := NewBookingService()
	if _, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: start,
	}); !errors.Is(err, ledger.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for zero-length window, got %v", err)
	}
	if _, err := svc.CheckAvailability(room.ID, start, start.Add(-time.Hour)); !errors.Is(err, ledger.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for reversed window, got %v", err)
	}
}

func TestAddChargeOnlyWhileCheckedIn(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 2)

	svc := NewBookingService()
	booking, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Charges before check-in are rejected.
	if _, err := svc.AddCharge(booking.ID, models.ChargeKindInternet, amount(t, "40.00"), 1, ""); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition before check-in, got %v", err)
	}

	if booking, err = svc.Confirm(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentStatus != ledger.StatusUnpaid {
		t.Fatalf("expected unpaid after confirmation, got %s", booking.PaymentStatus)
	}

	if booking, err = svc.CheckIn(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.CheckInAt == nil {
		t.Fatalf("expected check-in stamp")
	}

	booking, err = svc.AddCharge(booking.ID, models.ChargeKindLaptop, amount(t, "100.00"), 1, "laptop rental")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !booking.AddOnAmount.Equal(amount(t, "100.00")) {
		t.Fatalf("expected add-on 100.00, got %s", booking.AddOnAmount)
	}
	if !booking.TotalAmount.Equal(amount(t, "340.00")) {
		t.Fatalf("expected total 340.00, got %s", booking.TotalAmount)
	}
	if len(booking.Charges) != 1 {
		t.Fatalf("expected one charge row, got %d", len(booking.Charges))
	}

	if _, err := svc.AddCharge(booking.ID, "parking", amount(t, "10.00"), 1, ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for unknown charge kind, got %v", err)
	}
}

func TestCheckOutFloorsAtPaidAmount(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 4)

	svc := NewBookingService()
	booking, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking, err = svc.Confirm(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking, err = svc.RecordPayment(booking.ID, amount(t, "480.00"), models.PaymentMethodCash, 1, "prepaid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking, err = svc.CheckIn(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Checking out right away means almost no actual usage. The final total
	// must not drop below what was already collected.
	booking, err = svc.CheckOut(booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingStatusCompleted {
		t.Fatalf("expected completed, got %s", booking.Status)
	}
	if booking.CheckOutAt == nil {
		t.Fatalf("expected check-out stamp")
	}
	if !booking.TotalAmount.Equal(amount(t, "480.00")) {
		t.Fatalf("expected final total floored at 480.00, got %s", booking.TotalAmount)
	}
	if booking.PaymentStatus != ledger.StatusFullyPaid {
		t.Fatalf("expected fully_paid, got %s", booking.PaymentStatus)
	}
}

func TestCancelCheckedInBookingRejected(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	room := seedRoom(t, branch.ID, "120.00")
	start, end := window(t, 2)

	svc := NewBookingService()
	booking, err := svc.CreateBooking(CreateBookingInput{
		RoomID: room.ID, ReservedByUserID: 1, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CheckIn(booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(booking.ID); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
