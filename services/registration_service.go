package services

import (
	"errors"
	"fmt"
	"time"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationService runs the course enrollment lifecycle: enroll against
// course capacity, accept payments through the ledger, free status updates
// between active/completed/dropped, soft withdrawal and certificate issuance.
type RegistrationService struct {
	payments *PaymentService
}

func NewRegistrationService() *RegistrationService {
	return &RegistrationService{payments: NewPaymentService()}
}

// EnrollInput describes one enrollment request. TotalAmount overrides the
// course price when set (negotiated discounts); otherwise the course price is
// snapshotted as-is.
type EnrollInput struct {
	StudentID        uint
	CourseID         uint
	EnrolledByUserID uint
	TotalAmount      *decimal.Decimal
}

// Enroll creates a registration for a student on a course. The course row is
// locked for the duration of the capacity check and insert, so two
// concurrent enrollments cannot both squeeze into the last seat. TotalAmount
// is a snapshot: later course price edits never alter this registration.
func (s *RegistrationService) Enroll(in EnrollInput) (*models.CourseRegistration, error) {
	var reg *models.CourseRegistration
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, in.StudentID).Error; err != nil {
			return fmt.Errorf("%w: student %d", ledger.ErrNotFound, in.StudentID)
		}
		if !student.IsActive {
			return fmt.Errorf("%w: student %d is inactive", ledger.ErrNotFound, in.StudentID)
		}

		var course models.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, in.CourseID).Error; err != nil {
			return fmt.Errorf("%w: course %d", ledger.ErrNotFound, in.CourseID)
		}
		if course.Status == models.CourseStatusCancelled || course.Status == models.CourseStatusCompleted {
			return fmt.Errorf("%w: course %q is %s", ledger.ErrInvalidTransition, course.Name, course.Status)
		}

		var existing int64
		if err := tx.Model(&models.CourseRegistration{}).
			Where("course_id = ? AND student_id = ? AND is_active = ? AND status <> ?",
				in.CourseID, in.StudentID, true, models.RegistrationStatusDropped).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: student %d on course %d", ledger.ErrDuplicateEnrollment, in.StudentID, in.CourseID)
		}

		var active int64
		if err := tx.Model(&models.CourseRegistration{}).
			Where("course_id = ? AND is_active = ? AND status <> ?",
				in.CourseID, true, models.RegistrationStatusDropped).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(course.MaxStudents) {
			return fmt.Errorf("%w: course %q is full (%d/%d)",
				ledger.ErrCapacityExceeded, course.Name, active, course.MaxStudents)
		}

		total := course.Price
		if in.TotalAmount != nil {
			total = *in.TotalAmount
		}
		total = ledger.Normalize(total)
		if total.IsNegative() {
			return fmt.Errorf("%w: total %s", ledger.ErrInvalidAmount, total)
		}

		reg = &models.CourseRegistration{
			BranchID:         course.BranchID,
			StudentID:        in.StudentID,
			CourseID:         in.CourseID,
			TotalAmount:      total,
			PaidAmount:       decimal.Zero,
			PaymentStatus:    ledger.DeriveStatus(total, decimal.Zero, true),
			Status:           models.RegistrationStatusActive,
			IsActive:         true,
			EnrolledByUserID: in.EnrolledByUserID,
		}
		return tx.Create(reg).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": reg.ID,
		"student_id":      reg.StudentID,
		"course_id":       reg.CourseID,
		"total_amount":    reg.TotalAmount.String(),
	}).Info("student enrolled")

	return reg, nil
}

// RecordPayment posts a payment against a registration through the ledger
// and returns the refreshed registration.
func (s *RegistrationService) RecordPayment(registrationID uint, amount decimal.Decimal, method string, processedBy uint, note string) (*models.CourseRegistration, error) {
	_, err := s.payments.Post(PostPaymentInput{
		Owner:             ledger.ForRegistration(registrationID),
		Amount:            amount,
		Method:            method,
		ProcessedByUserID: processedBy,
		Note:              note,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(registrationID)
}

// UpdateStatus moves a registration between active, completed and dropped.
// These are free transitions; dropping does not auto-refund - any refund is
// an explicit adjusting payment posted by the caller, since the ledger never
// deletes history.
func (s *RegistrationService) UpdateStatus(registrationID uint, status string) (*models.CourseRegistration, error) {
	switch status {
	case models.RegistrationStatusActive, models.RegistrationStatusCompleted, models.RegistrationStatusDropped:
	default:
		return nil, fmt.Errorf("%w: unknown registration status %q", ledger.ErrInvalidTransition, status)
	}

	var reg models.CourseRegistration
	if err := database.DB.First(&reg, registrationID).Error; err != nil {
		return nil, fmt.Errorf("%w: registration %d", ledger.ErrNotFound, registrationID)
	}
	if err := database.DB.Model(&reg).Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.Get(registrationID)
}

// Withdraw soft-deactivates a registration. The row and its payment history
// stay in place for audit; the seat it held is released.
func (s *RegistrationService) Withdraw(registrationID uint) (*models.CourseRegistration, error) {
	var reg models.CourseRegistration
	if err := database.DB.First(&reg, registrationID).Error; err != nil {
		return nil, fmt.Errorf("%w: registration %d", ledger.ErrNotFound, registrationID)
	}
	if err := database.DB.Model(&reg).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return s.Get(registrationID)
}

// IssueCertificate creates a certificate for a registration. Gated on the
// course being completed and at least one posted payment; issuance is a side
// effect and never touches the ledger.
func (s *RegistrationService) IssueCertificate(registrationID, issuedBy uint) (*models.Certificate, error) {
	var cert *models.Certificate
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var reg models.CourseRegistration
		if err := tx.Preload("Course").First(&reg, registrationID).Error; err != nil {
			return fmt.Errorf("%w: registration %d", ledger.ErrNotFound, registrationID)
		}
		if reg.Course.Status != models.CourseStatusCompleted {
			return fmt.Errorf("%w: course %q is not completed", ledger.ErrInvalidTransition, reg.Course.Name)
		}
		if !reg.PaidAmount.IsPositive() {
			return fmt.Errorf("%w: no payment recorded for registration %d", ledger.ErrInvalidTransition, registrationID)
		}

		var existing models.Certificate
		if err := tx.Where("registration_id = ?", registrationID).First(&existing).Error; err == nil {
			cert = &existing
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cert = &models.Certificate{
			RegistrationID: registrationID,
			StudentID:      reg.StudentID,
			CourseID:       reg.CourseID,
			CertificateNo:  fmt.Sprintf("CERT-%s", uuid.New().String()[:8]),
			IssuedByUserID: issuedBy,
			IssuedAt:       time.Now(),
		}
		return tx.Create(cert).Error
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// Get returns one registration with its student and course preloaded.
func (s *RegistrationService) Get(registrationID uint) (*models.CourseRegistration, error) {
	var reg models.CourseRegistration
	if err := database.DB.Preload("Student").Preload("Course").First(&reg, registrationID).Error; err != nil {
		return nil, fmt.Errorf("%w: registration %d", ledger.ErrNotFound, registrationID)
	}
	return &reg, nil
}
