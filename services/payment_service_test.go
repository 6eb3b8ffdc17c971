package services

import (
	"errors"
	"testing"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"
)

func enrollForPayment(t *testing.T, total string) *models.CourseRegistration {
	t.Helper()
	branch := seedBranch(t)
	student := seedStudent(t, branch.ID)
	course := seedCourse(t, branch.ID, total, 10)
	reg, err := NewRegistrationService().Enroll(EnrollInput{
		StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return reg
}

func TestPostValidatesInput(t *testing.T) {
	setupTestDB(t)
	svc := NewPaymentService()

	if _, err := svc.Post(PostPaymentInput{
		Owner:  ledger.Owner{Type: "", ID: 1},
		Amount: amount(t, "10.00"),
	}); !errors.Is(err, ledger.ErrMissingOwner) {
		t.Fatalf("expected ErrMissingOwner, got %v", err)
	}

	if _, err := svc.Post(PostPaymentInput{
		Owner:  ledger.ForRegistration(1),
		Amount: amount(t, "0"),
	}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if _, err := svc.Post(PostPaymentInput{
		Owner:  ledger.ForRegistration(1),
		Amount: amount(t, "-5.00"),
	}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if _, err := svc.Post(PostPaymentInput{
		Owner:  ledger.ForRegistration(999),
		Amount: amount(t, "10.00"),
	}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing owner, got %v", err)
	}
}

func TestLedgerSumMatchesCachedPaid(t *testing.T) {
	setupTestDB(t)
	reg := enrollForPayment(t, "3000.00")

	svc := NewPaymentService()
	owner := ledger.ForRegistration(reg.ID)

	for _, amt := range []string{"1000.00", "500.00", "250.00"} {
		if _, err := svc.Post(PostPaymentInput{
			Owner: owner, Amount: amount(t, amt), Method: models.PaymentMethodCash, ProcessedByUserID: 1,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	sum, err := svc.SumPayments(owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equal(amount(t, "1750.00")) {
		t.Fatalf("expected ledger sum 1750.00, got %s", sum)
	}

	var refreshed models.CourseRegistration
	if err := database.DB.First(&refreshed, reg.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refreshed.PaidAmount.Equal(sum) {
		t.Fatalf("cached paid %s diverges from ledger sum %s", refreshed.PaidAmount, sum)
	}

	rows, err := svc.ListPayments(owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.ReceiptRef == "" {
			t.Fatalf("expected receipt ref on every row")
		}
		if row.Source != "course" {
			t.Fatalf("expected source course, got %s", row.Source)
		}
	}
}

func TestRefundReducesPaid(t *testing.T) {
	setupTestDB(t)
	reg := enrollForPayment(t, "2000.00")

	svc := NewPaymentService()
	owner := ledger.ForRegistration(reg.ID)

	if _, err := svc.Post(PostPaymentInput{
		Owner: owner, Amount: amount(t, "2000.00"), Method: models.PaymentMethodCash, ProcessedByUserID: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Post(PostPaymentInput{
		Owner: owner, Amount: amount(t, "500.00"), Type: models.PaymentTypeRefund,
		Method: models.PaymentMethodCash, ProcessedByUserID: 1, Note: "partial refund",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var refreshed models.CourseRegistration
	if err := database.DB.First(&refreshed, reg.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refreshed.PaidAmount.Equal(amount(t, "1500.00")) {
		t.Fatalf("expected paid 1500.00 after refund, got %s", refreshed.PaidAmount)
	}
	if refreshed.PaymentStatus != ledger.StatusPartiallyPaid {
		t.Fatalf("expected partially_paid after refund, got %s", refreshed.PaymentStatus)
	}

	// The refund is a new row, not an edit: sum still matches.
	sum, err := svc.SumPayments(owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equal(refreshed.PaidAmount) {
		t.Fatalf("ledger sum %s diverges from paid %s", sum, refreshed.PaidAmount)
	}

	// Refunding more than was paid is rejected.
	if _, err := svc.Post(PostPaymentInput{
		Owner: owner, Amount: amount(t, "2000.00"), Type: models.PaymentTypeRefund,
		Method: models.PaymentMethodCash, ProcessedByUserID: 1,
	}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for over-refund, got %v", err)
	}
}

func TestAuditDetectsDrift(t *testing.T) {
	setupTestDB(t)
	reg := enrollForPayment(t, "1000.00")

	payments := NewPaymentService()
	if _, err := payments.Post(PostPaymentInput{
		Owner: ledger.ForRegistration(reg.ID), Amount: amount(t, "400.00"),
		Method: models.PaymentMethodCash, ProcessedByUserID: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audit := NewReconciliationService()
	clean, err := audit.AuditAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clean) != 0 {
		t.Fatalf("expected clean audit, got %d inconsistencies", len(clean))
	}

	// Corrupt the cached balance behind the ledger's back.
	if err := database.DB.Model(&models.CourseRegistration{}).Where("id = ?", reg.ID).
		Update("paid_amount", amount(t, "999.00")).Error; err != nil {
		t.Fatalf("failed to corrupt balance: %v", err)
	}

	dirty, err := audit.AuditAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dirty) != 1 {
		t.Fatalf("expected one inconsistency, got %d", len(dirty))
	}
	if dirty[0].Owner.ID != reg.ID || dirty[0].Owner.Type != ledger.OwnerRegistration {
		t.Fatalf("inconsistency points at wrong owner: %+v", dirty[0].Owner)
	}
	if !dirty[0].LedgerSum.Equal(amount(t, "400.00")) {
		t.Fatalf("expected ledger sum 400.00, got %s", dirty[0].LedgerSum)
	}
}

func TestPaymentNotifiesLinkedStudent(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)

	account := models.User{Username: "nok", Password: "x", Role: "student", BranchID: branch.ID, Status: "active"}
	if err := database.DB.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	student := seedStudent(t, branch.ID)
	if err := database.DB.Model(&student).Update("user_id", account.ID).Error; err != nil {
		t.Fatalf("failed to link student: %v", err)
	}
	course := seedCourse(t, branch.ID, "1000.00", 10)

	svc := NewRegistrationService()
	reg, err := svc.Enroll(EnrollInput{StudentID: student.ID, CourseID: course.ID, EnrolledByUserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RecordPayment(reg.ID, amount(t, "500.00"), models.PaymentMethodCash, 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var notifications []models.Notification
	if err := database.DB.Where("user_id = ?", account.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifications))
	}
}
