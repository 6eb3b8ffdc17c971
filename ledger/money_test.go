package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		paid      string
		activated bool
		expected  string
	}{
		{
			name:      "nothing paid, activated",
			total:     "100.00",
			paid:      "0",
			activated: true,
			expected:  StatusUnpaid,
		},
		{
			name:      "nothing paid, not yet activated",
			total:     "100.00",
			paid:      "0",
			activated: false,
			expected:  StatusPending,
		},
		{
			name:      "partial payment",
			total:     "100.00",
			paid:      "40.00",
			activated: true,
			expected:  StatusPartiallyPaid,
		},
		{
			name:      "exactly settled",
			total:     "100.00",
			paid:      "100.00",
			activated: true,
			expected:  StatusFullyPaid,
		},
		{
			name:      "zero total stays unpaid",
			total:     "0",
			paid:      "0",
			activated: true,
			expected:  StatusUnpaid,
		},
		{
			name:      "partial not affected by activation flag",
			total:     "50.00",
			paid:      "10.00",
			activated: false,
			expected:  StatusPartiallyPaid,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(d(tc.total), d(tc.paid), tc.activated)
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestOrderTotalDiscountBeforeTax(t *testing.T) {
	// 200 - 50 + 14 = 164; applying tax first would give a different result
	// under percentage schemes, the documented order is subtract then add.
	got := OrderTotal(d("200.00"), d("50.00"), d("14.00"))
	if !got.Equal(d("164.00")) {
		t.Fatalf("expected 164.00, got %s", got)
	}
}

func TestRemaining(t *testing.T) {
	got := Remaining(d("4500.00"), d("1500.00"))
	if !got.Equal(d("3000.00")) {
		t.Fatalf("expected 3000.00, got %s", got)
	}
}

func TestNormalizeRounding(t *testing.T) {
	got := Normalize(d("10.005"))
	if !got.Equal(d("10.01")) {
		t.Fatalf("expected 10.01, got %s", got)
	}
}

func TestDeskCost(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(150 * time.Minute) // 2.5 hours
	got := DeskCost(start, end, d("120.00"))
	if !got.Equal(d("300.00")) {
		t.Fatalf("expected 300.00, got %s", got)
	}
}

func TestSharedCost(t *testing.T) {
	start := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	got := SharedCost(start, end, d("60.00"), 3)
	if !got.Equal(d("360.00")) {
		t.Fatalf("expected 360.00, got %s", got)
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		bStart   time.Time
		bEnd     time.Time
		expected bool
	}{
		{
			name:   "identical windows",
			aStart: base, aEnd: base.Add(hour),
			bStart: base, bEnd: base.Add(hour),
			expected: true,
		},
		{
			name:   "partial overlap",
			aStart: base, aEnd: base.Add(2 * hour),
			bStart: base.Add(hour), bEnd: base.Add(3 * hour),
			expected: true,
		},
		{
			name:   "touching boundaries do not overlap",
			aStart: base, aEnd: base.Add(hour),
			bStart: base.Add(hour), bEnd: base.Add(2 * hour),
			expected: false,
		},
		{
			name:   "disjoint",
			aStart: base, aEnd: base.Add(hour),
			bStart: base.Add(3 * hour), bEnd: base.Add(4 * hour),
			expected: false,
		},
		{
			name:   "contained window",
			aStart: base, aEnd: base.Add(4 * hour),
			bStart: base.Add(hour), bEnd: base.Add(2 * hour),
			expected: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestOwnerValidate(t *testing.T) {
	if err := ForRegistration(1).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Owner{Type: OwnerDeskBooking, ID: 0}).Validate(); err == nil {
		t.Fatalf("expected error for missing owner id")
	}
	if err := (Owner{Type: "invoice", ID: 5}).Validate(); err == nil {
		t.Fatalf("expected error for unknown owner type")
	}
}

func TestOwnerSource(t *testing.T) {
	tests := []struct {
		owner    Owner
		expected string
	}{
		{ForRegistration(1), "course"},
		{ForCafeteriaOrder(1), "cafeteria"},
		{ForDeskBooking(1), "desk"},
		{ForSharedBooking(1), "shared"},
	}
	for _, tc := range tests {
		if got := tc.owner.Source(); got != tc.expected {
			t.Fatalf("expected %s for %s, got %s", tc.expected, tc.owner.Type, got)
		}
	}
}
