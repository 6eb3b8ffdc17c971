// Package ledger holds the shared money rules: amount normalization,
// remaining-amount derivation, payment status classification and the
// owner reference that ties a payment row to exactly one obligation.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses derived from Paid vs Total
const (
	StatusPending       = "pending"
	StatusUnpaid        = "unpaid"
	StatusPartiallyPaid = "partially_paid"
	StatusFullyPaid     = "fully_paid"
	StatusCancelled     = "cancelled"
)

// Normalize rounds an amount to 2 fractional digits. All money in the system
// passes through here before it is stored or compared.
func Normalize(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Remaining derives the outstanding balance. Callers guarantee paid <= total,
// so the result is never negative for valid state.
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	return Normalize(total.Sub(paid))
}

// DeriveStatus maps Paid vs Total to a payment status. activated=false maps
// a zero balance to pending instead of unpaid (booking created but not yet
// confirmed). The function is pure: re-deriving from stored amounts always
// yields the same value.
func DeriveStatus(total, paid decimal.Decimal, activated bool) string {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return StatusFullyPaid
	case paid.IsPositive():
		return StatusPartiallyPaid
	case activated:
		return StatusUnpaid
	default:
		return StatusPending
	}
}

// OrderTotal applies the documented pricing order:
// SubTotal -> subtract Discount -> add Tax -> Total.
// Discount applies before tax; reversing the order changes the result.
func OrderTotal(subTotal, discount, tax decimal.Decimal) decimal.Decimal {
	return Normalize(subTotal.Sub(discount).Add(tax))
}

// HoursBetween returns the duration of [start, end) in hours as a decimal,
// rounded to 2 digits.
func HoursBetween(start, end time.Time) decimal.Decimal {
	return decimal.NewFromFloat(end.Sub(start).Hours()).Round(2)
}

// DeskCost prices a desk session: hours x rate.
func DeskCost(start, end time.Time, rate decimal.Decimal) decimal.Decimal {
	return Normalize(HoursBetween(start, end).Mul(rate))
}

// SharedCost prices a shared-workspace booking: hours x rate x people.
func SharedCost(start, end time.Time, rate decimal.Decimal, people int) decimal.Decimal {
	return Normalize(HoursBetween(start, end).Mul(rate).Mul(decimal.NewFromInt(int64(people))))
}

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
