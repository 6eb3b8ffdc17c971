package ledger

import "fmt"

// Owner kinds. A payment row belongs to exactly one obligation; the kind
// decides which table OwnerID points into.
const (
	OwnerRegistration   = "course_registration"
	OwnerCafeteriaOrder = "cafeteria_order"
	OwnerDeskBooking    = "workspace_booking"
	OwnerSharedBooking  = "shared_workspace_booking"
)

// Owner is the reference from a payment row to its owning obligation.
// Modelling it as a single (type, id) pair instead of four nullable foreign
// keys makes "more than one owner populated" unrepresentable.
type Owner struct {
	Type string
	ID   uint
}

func ForRegistration(id uint) Owner   { return Owner{Type: OwnerRegistration, ID: id} }
func ForCafeteriaOrder(id uint) Owner { return Owner{Type: OwnerCafeteriaOrder, ID: id} }
func ForDeskBooking(id uint) Owner    { return Owner{Type: OwnerDeskBooking, ID: id} }
func ForSharedBooking(id uint) Owner  { return Owner{Type: OwnerSharedBooking, ID: id} }

// Source returns the payment source label recorded on ledger rows for this
// owner kind.
func (o Owner) Source() string {
	switch o.Type {
	case OwnerRegistration:
		return "course"
	case OwnerCafeteriaOrder:
		return "cafeteria"
	case OwnerDeskBooking:
		return "desk"
	case OwnerSharedBooking:
		return "shared"
	}
	return ""
}

// Validate rejects owner references that do not name a known obligation.
func (o Owner) Validate() error {
	if o.ID == 0 {
		return fmt.Errorf("%w: owner id is required", ErrMissingOwner)
	}
	switch o.Type {
	case OwnerRegistration, OwnerCafeteriaOrder, OwnerDeskBooking, OwnerSharedBooking:
		return nil
	}
	return fmt.Errorf("%w: unknown owner type %q", ErrMissingOwner, o.Type)
}
