package services

import (
	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReconciliationService recomputes owner balances from the payment ledger
// and compares them with the cached PaidAmount on each obligation. The cache
// exists for read performance; the ledger rows are the source of truth, and
// this check is how drift would surface. It is a read-only audit, never a
// mutation path.
type ReconciliationService struct {
	payments *PaymentService
}

func NewReconciliationService() *ReconciliationService {
	return &ReconciliationService{payments: NewPaymentService()}
}

// Inconsistency is one obligation whose cached balance disagrees with the
// ledger, or whose remaining amount is negative.
type Inconsistency struct {
	Owner      ledger.Owner    `json:"owner"`
	StoredPaid decimal.Decimal `json:"stored_paid"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Total      decimal.Decimal `json:"total"`
	Reason     string          `json:"reason"`
}

// CheckOwner verifies one obligation against the ledger.
func (s *ReconciliationService) CheckOwner(owner ledger.Owner, total, storedPaid decimal.Decimal) *Inconsistency {
	sum, err := s.payments.SumPayments(owner)
	if err != nil {
		return &Inconsistency{Owner: owner, StoredPaid: storedPaid, Total: total, Reason: "ledger query failed: " + err.Error()}
	}
	if !sum.Equal(storedPaid) {
		return &Inconsistency{Owner: owner, StoredPaid: storedPaid, LedgerSum: sum, Total: total, Reason: "cached paid amount diverges from ledger"}
	}
	if ledger.Remaining(total, storedPaid).IsNegative() {
		return &Inconsistency{Owner: owner, StoredPaid: storedPaid, LedgerSum: sum, Total: total, Reason: "paid exceeds total"}
	}
	return nil
}

// AuditAll walks every obligation in the system and returns the ones whose
// cached balance does not match the ledger. An empty result is the expected
// steady state.
func (s *ReconciliationService) AuditAll() ([]Inconsistency, error) {
	var found []Inconsistency

	var registrations []models.CourseRegistration
	if err := database.DB.Find(&registrations).Error; err != nil {
		return nil, err
	}
	for _, reg := range registrations {
		if inc := s.CheckOwner(ledger.ForRegistration(reg.ID), reg.TotalAmount, reg.PaidAmount); inc != nil {
			found = append(found, *inc)
		}
	}

	var orders []models.CafeteriaOrder
	if err := database.DB.Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, order := range orders {
		if inc := s.CheckOwner(ledger.ForCafeteriaOrder(order.ID), order.TotalAmount, order.PaidAmount); inc != nil {
			found = append(found, *inc)
		}
	}

	var deskBookings []models.WorkspaceBooking
	if err := database.DB.Find(&deskBookings).Error; err != nil {
		return nil, err
	}
	for _, booking := range deskBookings {
		if inc := s.CheckOwner(ledger.ForDeskBooking(booking.ID), booking.TotalAmount, booking.PaidAmount); inc != nil {
			found = append(found, *inc)
		}
	}

	var sharedBookings []models.SharedWorkspaceBooking
	if err := database.DB.Find(&sharedBookings).Error; err != nil {
		return nil, err
	}
	for _, booking := range sharedBookings {
		if inc := s.CheckOwner(ledger.ForSharedBooking(booking.ID), booking.TotalAmount, booking.PaidAmount); inc != nil {
			found = append(found, *inc)
		}
	}

	if len(found) > 0 {
		logrus.WithField("count", len(found)).Warn("ledger reconciliation found inconsistencies")
	}
	return found, nil
}
