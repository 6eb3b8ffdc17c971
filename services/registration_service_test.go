package services

import (
	"errors"
	"testing"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"
)

func TestEnrollSnapshotsCoursePrice(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "4500.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reg.TotalAmount.Equal(amount(t, "4500.00")) {
		t.Fatalf("expected total 4500.00, got %s", reg.TotalAmount)
	}
	if !reg.PaidAmount.IsZero() {
		t.Fatalf("expected zero paid, got %s", reg.PaidAmount)
	}
	if reg.PaymentStatus != ledger.StatusUnpaid {
		t.Fatalf("expected unpaid, got %s", reg.PaymentStatus)
	}

	// Raising the catalog price later must not touch the registration.
	if err := database.DB.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("price", amount(t, "9999.00")).Error; err != nil {
		t.Fatalf("failed to update course price: %v", err)
	}
	refreshed, err := svc.Get(reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refreshed.TotalAmount.Equal(amount(t, "4500.00")) {
		t.Fatalf("registration total changed with catalog price: %s", refreshed.TotalAmount)
	}
}

func TestEnrollWithNegotiatedTotal(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "4500.00", 10)

	negotiated := amount(t, "4000.00")
	reg, err := NewRegistrationService().Enroll(EnrollInput{
		StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1, TotalAmount: &negotiated,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reg.TotalAmount.Equal(negotiated) {
		t.Fatalf("expected 4000.00, got %s", reg.TotalAmount)
	}
}

func TestEnrollInstallmentsToFullyPaid(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "4500.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg, err = svc.RecordPayment(reg.ID, amount(t, "1500.00"), models.PaymentMethodCash, 1, "first installment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.PaymentStatus != ledger.StatusPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", reg.PaymentStatus)
	}
	if !reg.PaidAmount.Equal(amount(t, "1500.00")) {
		t.Fatalf("expected paid 1500.00, got %s", reg.PaidAmount)
	}

	reg, err = svc.RecordPayment(reg.ID, amount(t, "3000.00"), models.PaymentMethodTransfer, 1, "settlement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.PaymentStatus != ledger.StatusFullyPaid {
		t.Fatalf("expected fully_paid, got %s", reg.PaymentStatus)
	}

	// Remaining must be exactly zero, never negative.
	if !ledger.Remaining(reg.TotalAmount, reg.PaidAmount).IsZero() {
		t.Fatalf("expected zero remaining")
	}
}

func TestEnrollRejectsOverpayment(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.RecordPayment(reg.ID, amount(t, "1000.01"), models.PaymentMethodCash, 1, ""); !errors.Is(err, ledger.ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}

	// Balance untouched after the rejection.
	reg, err = svc.Get(reg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reg.PaidAmount.IsZero() {
		t.Fatalf("expected zero paid after rejected payment, got %s", reg.PaidAmount)
	}
}

func TestEnrollCapacity(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	course := seedCourse(t, branch.ID, "1000.00", 2)

	svc := NewRegistrationService()
	for i := 0; i < 2; i++ {
		student := seedStudent(t, branch.ID)
		if _, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1}); err != nil {
			t.Fatalf("unexpected error on seat %d: %v", i+1, err)
		}
	}

	extra := seedStudent(t, branch.ID)
	_, err := svc.Enroll(EnrollInput{StudentID: extra.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if !errors.Is(err, ledger.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestEnrollDuplicateRejected(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 10)

	svc := NewRegistrationService()
	if _, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if !errors.Is(err, ledger.ErrDuplicateEnrollment) {
		t.Fatalf("expected ErrDuplicateEnrollment, got %v", err)
	}
}

func TestWithdrawReleasesSeat(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	first := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 1)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: first.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := seedStudent(t, branch.ID)
	if _, err := svc.Enroll(EnrollInput{StudentID: second.ID, CourseID: course.ID, EnrolledByUserID: 1}); !errors.Is(err, ledger.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	if _, err := svc.Withdraw(reg.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Enroll(EnrollInput{StudentID: second.ID, CourseID: course.ID, EnrolledByUserID: 1}); err != nil {
		t.Fatalf("expected seat released after withdrawal, got %v", err)
	}
}

func TestEnrollRejectsClosedCourse(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 10)

	if err := database.DB.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("status", models.CourseStatusCancelled).Error; err != nil {
		t.Fatalf("failed to cancel course: %v", err)
	}

	_, err := NewRegistrationService().Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIssueCertificate(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Course not completed yet.
	if _, err := svc.IssueCertificate(reg.ID, 1); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition before completion, got %v", err)
	}

	if err := database.DB.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("status", models.CourseStatusCompleted).Error; err != nil {
		t.Fatalf("failed to complete course: %v", err)
	}

	// Completed but nothing paid.
	if _, err := svc.IssueCertificate(reg.ID, 1); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition without payment, got %v", err)
	}

	if _, err := svc.RecordPayment(reg.ID, amount(t, "1000.00"), models.PaymentMethodCash, 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cert, err := svc.IssueCertificate(reg.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cert.CertificateNo == "" {
		t.Fatalf("expected certificate number")
	}

	// Idempotent: the same registration yields the same certificate.
	again, err := svc.IssueCertificate(reg.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != cert.ID {
		t.Fatalf("expected same certificate, got %d and %d", cert.ID, again.ID)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, "1000.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.UpdateStatus(reg.ID, "graduated"); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
	updated, err := svc.UpdateStatus(reg.ID, models.RegistrationStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.RegistrationStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
}
