package services

import (
	"errors"
	"fmt"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService is the append-only payment ledger. Every money movement in
// the system goes through Post, which locks the owning obligation, validates
// the movement against its current balance and updates the cached
// PaidAmount/PaymentStatus in the same transaction. Posted rows are never
// updated or deleted.
type PaymentService struct{}

func NewPaymentService() *PaymentService {
	return &PaymentService{}
}

// PostPaymentInput carries a single money movement against one obligation.
type PostPaymentInput struct {
	Owner             ledger.Owner
	Amount            decimal.Decimal
	Method            string
	Type              string // payment (default), adjustment, refund
	ProcessedByUserID uint
	Note              string
}

// Post validates and appends one ledger row. Refund rows reduce the owner's
// PaidAmount; payment and adjustment rows increase it. The read of the
// current balance, the overpayment check and the aggregate update are
// serialized per owner via a row lock, so two cashiers racing on the same
// obligation cannot both pass the check against a stale balance.
func (s *PaymentService) Post(in PostPaymentInput) (*models.Payment, error) {
	if err := in.Owner.Validate(); err != nil {
		return nil, err
	}
	in.Amount = ledger.Normalize(in.Amount)
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ledger.ErrInvalidAmount, in.Amount)
	}
	if in.Type == "" {
		in.Type = models.PaymentTypePayment
	}

	var payment *models.Payment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		branchID, err := s.applyToOwner(tx, in)
		if err != nil {
			return err
		}

		payment = &models.Payment{
			BranchID:          branchID,
			OwnerType:         in.Owner.Type,
			OwnerID:           in.Owner.ID,
			Amount:            in.Amount,
			Method:            in.Method,
			Type:              in.Type,
			Source:            in.Owner.Source(),
			ReceiptRef:        uuid.New().String(),
			ProcessedByUserID: in.ProcessedByUserID,
			Note:              in.Note,
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"owner_type":  payment.OwnerType,
		"owner_id":    payment.OwnerID,
		"amount":      payment.Amount.String(),
		"type":        payment.Type,
		"receipt_ref": payment.ReceiptRef,
	}).Info("payment posted")

	return payment, nil
}

// applyToOwner locks the owning row, validates the movement and writes the
// new cached balance. Returns the owner's branch for the ledger row.
func (s *PaymentService) applyToOwner(tx *gorm.DB, in PostPaymentInput) (uint, error) {
	switch in.Owner.Type {
	case ledger.OwnerRegistration:
		var reg models.CourseRegistration
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, in.Owner.ID).Error; err != nil {
			return 0, ownerLookupErr(err, "course registration")
		}
		paid, status, err := s.newBalance(reg.TotalAmount, reg.PaidAmount, reg.PaymentStatus, true, in)
		if err != nil {
			return 0, err
		}
		if err := tx.Model(&reg).Updates(map[string]interface{}{
			"paid_amount": paid, "payment_status": status,
		}).Error; err != nil {
			return 0, err
		}
		s.notifyStudentPayment(tx, reg.StudentID, in.Amount, "course")
		return reg.BranchID, nil

	case ledger.OwnerCafeteriaOrder:
		var order models.CafeteriaOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, in.Owner.ID).Error; err != nil {
			return 0, ownerLookupErr(err, "cafeteria order")
		}
		if order.Status == models.OrderStatusCancelled {
			return 0, fmt.Errorf("%w: order %d is cancelled", ledger.ErrOwnerSettled, order.ID)
		}
		paid, status, err := s.newBalance(order.TotalAmount, order.PaidAmount, order.PaymentStatus, true, in)
		if err != nil {
			return 0, err
		}
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"paid_amount": paid, "payment_status": status,
		}).Error; err != nil {
			return 0, err
		}
		return order.BranchID, nil

	case ledger.OwnerDeskBooking:
		var booking models.WorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, in.Owner.ID).Error; err != nil {
			return 0, ownerLookupErr(err, "workspace booking")
		}
		if booking.Status == models.BookingStatusCancelled {
			return 0, fmt.Errorf("%w: booking %d is cancelled", ledger.ErrOwnerSettled, booking.ID)
		}
		activated := booking.Status != models.BookingStatusPending
		paid, status, err := s.newBalance(booking.TotalAmount, booking.PaidAmount, booking.PaymentStatus, activated, in)
		if err != nil {
			return 0, err
		}
		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"paid_amount": paid, "payment_status": status,
		}).Error; err != nil {
			return 0, err
		}
		return booking.BranchID, nil

	case ledger.OwnerSharedBooking:
		var booking models.SharedWorkspaceBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, in.Owner.ID).Error; err != nil {
			return 0, ownerLookupErr(err, "shared workspace booking")
		}
		if booking.Status == models.BookingStatusCancelled {
			return 0, fmt.Errorf("%w: booking %d is cancelled", ledger.ErrOwnerSettled, booking.ID)
		}
		activated := booking.Status != models.BookingStatusPending
		paid, status, err := s.newBalance(booking.TotalAmount, booking.PaidAmount, booking.PaymentStatus, activated, in)
		if err != nil {
			return 0, err
		}
		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"paid_amount": paid, "payment_status": status,
		}).Error; err != nil {
			return 0, err
		}
		return booking.BranchID, nil
	}
	return 0, ledger.ErrMissingOwner
}

// newBalance computes the owner's next cached balance for one movement.
// Payments and adjustments add to PaidAmount and are rejected when they
// would push it past TotalAmount. Refunds subtract and are rejected when
// they would push it below zero.
func (s *PaymentService) newBalance(total, paid decimal.Decimal, currentStatus string, activated bool, in PostPaymentInput) (decimal.Decimal, string, error) {
	if currentStatus == ledger.StatusCancelled {
		return decimal.Zero, "", fmt.Errorf("%w: payment status is cancelled", ledger.ErrOwnerSettled)
	}

	var newPaid decimal.Decimal
	switch in.Type {
	case models.PaymentTypeRefund:
		newPaid = ledger.Normalize(paid.Sub(in.Amount))
		if newPaid.IsNegative() {
			return decimal.Zero, "", fmt.Errorf("%w: refund %s exceeds paid %s", ledger.ErrInvalidAmount, in.Amount, paid)
		}
	default:
		if currentStatus == ledger.StatusFullyPaid {
			return decimal.Zero, "", fmt.Errorf("%w: already fully paid", ledger.ErrOwnerSettled)
		}
		newPaid = ledger.Normalize(paid.Add(in.Amount))
		if newPaid.GreaterThan(total) {
			return decimal.Zero, "", fmt.Errorf("%w: paid %s + %s exceeds total %s",
				ledger.ErrOverpayment, paid, in.Amount, total)
		}
	}

	return newPaid, ledger.DeriveStatus(total, newPaid, activated), nil
}

// SumPayments aggregates the ledger for one owner: payments and adjustments
// count positive, refunds negative. The result must always equal the owner's
// cached PaidAmount; Reconcile checks exactly that.
func (s *PaymentService) SumPayments(owner ledger.Owner) (decimal.Decimal, error) {
	var payments []models.Payment
	if err := database.DB.
		Where("owner_type = ? AND owner_id = ?", owner.Type, owner.ID).
		Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, p := range payments {
		if p.Type == models.PaymentTypeRefund {
			sum = sum.Sub(p.Amount)
		} else {
			sum = sum.Add(p.Amount)
		}
	}
	return ledger.Normalize(sum), nil
}

// ListPayments returns the posted rows for one owner, oldest first.
func (s *PaymentService) ListPayments(owner ledger.Owner) ([]models.Payment, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var payments []models.Payment
	err := database.DB.
		Where("owner_type = ? AND owner_id = ?", owner.Type, owner.ID).
		Order("id asc").
		Find(&payments).Error
	return payments, err
}

// notifyStudentPayment writes a notification row for the student's login
// account, if one is linked. Best effort; a missing user is not an error.
func (s *PaymentService) notifyStudentPayment(tx *gorm.DB, studentID uint, amount decimal.Decimal, source string) {
	var student models.Student
	if err := tx.First(&student, studentID).Error; err != nil || student.UserID == nil {
		return
	}
	notification := models.Notification{
		UserID:  *student.UserID,
		Title:   "Payment received",
		Message: fmt.Sprintf("We received your %s payment of %s. Thank you.", source, amount.StringFixed(2)),
		Type:    "success",
	}
	if err := tx.Create(&notification).Error; err != nil {
		logrus.WithError(err).Warn("failed to create payment notification")
	}
}

func ownerLookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, what)
	}
	return err
}
