package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Branch model - every entity in the system is scoped to one physical branch
type Branch struct {
	BaseModel
	Name    string `json:"name" gorm:"size:255;not null"`
	Code    string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Address string `json:"address" gorm:"size:500"`
	Phone   string `json:"phone" gorm:"size:20"`
	Active  bool   `json:"active" gorm:"default:true"`

	// Relationships
	Users    []User            `json:"users,omitempty" gorm:"foreignKey:BranchID"`
	Rooms    []Room            `json:"rooms,omitempty" gorm:"foreignKey:BranchID"`
	Courses  []Course          `json:"courses,omitempty" gorm:"foreignKey:BranchID"`
	Students []Student         `json:"students,omitempty" gorm:"foreignKey:BranchID"`
	Spaces   []SharedWorkspace `json:"spaces,omitempty" gorm:"foreignKey:BranchID"`
}

// User model - staff and student login accounts
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255"`
	Phone    string `json:"phone" gorm:"size:20"`
	Role     string `json:"role" gorm:"size:50;not null;default:'staff'"` // owner, admin, staff, student
	BranchID uint   `json:"branch_id" gorm:"not null"`
	Status   string `json:"status" gorm:"size:50;not null;default:'active'"` // active, inactive, suspended

	// Relationships
	Branch  Branch   `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
}

// Student model. Students with registrations or payments are never hard
// deleted; IsActive flips to false instead so the ledger history survives.
type Student struct {
	BaseModel
	UserID           *uint      `json:"user_id" gorm:"uniqueIndex"`
	BranchID         uint       `json:"branch_id" gorm:"not null"`
	FirstName        string     `json:"first_name" gorm:"size:100;not null"`
	LastName         string     `json:"last_name" gorm:"size:100"`
	Nickname         string     `json:"nickname" gorm:"size:100"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           string     `json:"gender" gorm:"size:20"`
	Address          string     `json:"address" gorm:"size:500"`
	Phone            string     `json:"phone" gorm:"size:20"`
	Email            string     `json:"email" gorm:"size:255"`
	ParentName       string     `json:"parent_name" gorm:"size:200"`
	ParentPhone      string     `json:"parent_phone" gorm:"size:20"`
	EmergencyContact string     `json:"emergency_contact" gorm:"size:200"`
	ContactSource    string     `json:"contact_source" gorm:"size:100"`
	IsActive         bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	User   *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Branch Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// Course lifecycle statuses
const (
	CourseStatusPlanned   = "planned"
	CourseStatusActive    = "active"
	CourseStatusCompleted = "completed"
	CourseStatusCancelled = "cancelled"
)

// Course model. Price is the catalog price; registrations snapshot it at
// enrollment time, so editing Price never touches existing registrations.
type Course struct {
	BaseModel
	BranchID    uint            `json:"branch_id" gorm:"not null"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Code        string          `json:"code" gorm:"size:100;uniqueIndex"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	MaxStudents int             `json:"max_students" gorm:"not null"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Status      string          `json:"status" gorm:"size:50;not null;default:'planned'"` // planned, active, completed, cancelled

	// Relationships
	Branch        Branch               `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	Registrations []CourseRegistration `json:"registrations,omitempty" gorm:"foreignKey:CourseID"`
}

// Registration lifecycle statuses
const (
	RegistrationStatusActive    = "active"
	RegistrationStatusCompleted = "completed"
	RegistrationStatusDropped   = "dropped"
)

// CourseRegistration links one student to one course and carries the
// financial obligation. TotalAmount is a snapshot of the course price at
// enrollment time. PaidAmount is the cached sum of posted payments; the
// payment ledger is the source of truth.
type CourseRegistration struct {
	BaseModel
	BranchID         uint            `json:"branch_id" gorm:"not null"`
	StudentID        uint            `json:"student_id" gorm:"not null;index"`
	CourseID         uint            `json:"course_id" gorm:"not null;index"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount       decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null"`
	PaymentStatus    string          `json:"payment_status" gorm:"size:50;not null;default:'unpaid'"` // pending, unpaid, partially_paid, fully_paid, cancelled
	Status           string          `json:"status" gorm:"size:50;not null;default:'active'"`         // active, completed, dropped
	IsActive         bool            `json:"is_active" gorm:"default:true"`
	EnrolledByUserID uint            `json:"enrolled_by_user_id"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// CafeteriaItem is a catalog entry. StockQuantity is decremented when an
// order referencing it is created and restored if that order is cancelled.
// It never goes below zero - insufficient stock rejects the order instead.
type CafeteriaItem struct {
	BaseModel
	BranchID      uint            `json:"branch_id" gorm:"not null"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Category      string          `json:"category" gorm:"size:100"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null"`
	Active        bool            `json:"active" gorm:"default:true"`

	// Relationships
	Branch Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// Cafeteria order lifecycle statuses. Forward-only:
// pending -> preparing -> ready -> delivered, with cancelled reachable from
// pending or preparing only.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// CafeteriaOrder model
type CafeteriaOrder struct {
	BaseModel
	BranchID          uint            `json:"branch_id" gorm:"not null"`
	OrderNumber       string          `json:"order_number" gorm:"size:100;uniqueIndex"`
	StudentID         *uint           `json:"student_id" gorm:"index"`
	CustomerName      string          `json:"customer_name" gorm:"size:200"`
	SubTotal          decimal.Decimal `json:"sub_total" gorm:"type:decimal(12,2);not null"`
	Discount          decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	Tax               decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount        decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null"`
	PaymentStatus     string          `json:"payment_status" gorm:"size:50;not null;default:'unpaid'"`
	Status            string          `json:"status" gorm:"size:50;not null;default:'pending'"` // pending, preparing, ready, delivered, cancelled
	CreatedByUserID   uint            `json:"created_by_user_id"`
	PreparedByUserID  *uint           `json:"prepared_by_user_id"`
	PreparedAt        *time.Time      `json:"prepared_at"`
	DeliveredByUserID *uint           `json:"delivered_by_user_id"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	Notes             string          `json:"notes" gorm:"type:text"`

	// Relationships
	Student *Student             `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Items   []CafeteriaOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// CafeteriaOrderItem is one line of an order. UnitPrice is a snapshot of the
// catalog price when the order was created; later catalog edits never alter
// historical orders.
type CafeteriaOrderItem struct {
	BaseModel
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ItemID    uint            `json:"item_id" gorm:"not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Item CafeteriaItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

// Room model - a bookable desk room
type Room struct {
	BaseModel
	BranchID   uint            `json:"branch_id" gorm:"not null"`
	RoomName   string          `json:"room_name" gorm:"size:100;not null"`
	Capacity   int             `json:"capacity" gorm:"not null"`
	HourlyRate decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);not null"`
	Equipment  JSON            `json:"equipment" gorm:"type:json"`
	Status     string          `json:"status" gorm:"size:50;not null;default:'available'"` // available, maintenance

	// Relationships
	Branch Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// Booking lifecycle statuses (desk and shared workspace)
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

// WorkspaceBooking reserves a room for a time window. HourlyRate is a
// snapshot of the room rate at booking time. CheckInAt/CheckOutAt record
// actual usage separately from the booked window; check-out reconciles the
// final cost against actual hours plus accrued session charges.
type WorkspaceBooking struct {
	BaseModel
	BranchID         uint            `json:"branch_id" gorm:"not null"`
	RoomID           uint            `json:"room_id" gorm:"not null;index"`
	StudentID        *uint           `json:"student_id" gorm:"index"`
	CustomerName     string          `json:"customer_name" gorm:"size:200"`
	ReservedByUserID uint            `json:"reserved_by_user_id"`
	StartTime        time.Time       `json:"start_time" gorm:"not null"`
	EndTime          time.Time       `json:"end_time" gorm:"not null"`
	HourlyRate       decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);not null"`
	AddOnAmount      decimal.Decimal `json:"add_on_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount       decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null"`
	PaymentStatus    string          `json:"payment_status" gorm:"size:50;not null;default:'pending'"`
	Status           string          `json:"status" gorm:"size:50;not null;default:'pending'"` // pending, confirmed, in_progress, completed, cancelled
	CheckInAt        *time.Time      `json:"check_in_at"`
	CheckOutAt       *time.Time      `json:"check_out_at"`

	// Relationships
	Room    Room            `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Student *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Charges []BookingCharge `json:"charges,omitempty" gorm:"foreignKey:BookingID"`
}

// Session charge kinds for desk bookings
const (
	ChargeKindInternet  = "internet"
	ChargeKindLaptop    = "laptop"
	ChargeKindCafeteria = "cafeteria"
)

// BookingCharge is an add-on cost accrued against a desk booking while the
// customer is checked in (internet, laptop rental, cafeteria items brought
// to the desk).
type BookingCharge struct {
	BaseModel
	BookingID     uint            `json:"booking_id" gorm:"not null;index"`
	Kind          string          `json:"kind" gorm:"size:50;not null"` // internet, laptop, cafeteria
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	AddedByUserID uint            `json:"added_by_user_id"`
	Note          string          `json:"note" gorm:"size:500"`
}

// SharedWorkspace is an open co-working area with a people capacity.
// CurrentOccupancy moves with check-in/check-out and stays within
// [0, MaxCapacity] at all times.
type SharedWorkspace struct {
	BaseModel
	BranchID         uint            `json:"branch_id" gorm:"not null"`
	Name             string          `json:"name" gorm:"size:100;not null"`
	HourlyRate       decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);not null"`
	MaxCapacity      int             `json:"max_capacity" gorm:"not null"`
	CurrentOccupancy int             `json:"current_occupancy" gorm:"not null;default:0"`
	Status           string          `json:"status" gorm:"size:50;not null;default:'available'"`

	// Relationships
	Branch Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// SharedWorkspaceBooking reserves seats in a shared workspace for a group of
// people. TotalAmount = hours x rate x people count.
type SharedWorkspaceBooking struct {
	BaseModel
	BranchID          uint            `json:"branch_id" gorm:"not null"`
	SharedWorkspaceID uint            `json:"shared_workspace_id" gorm:"not null;index"`
	StudentID         *uint           `json:"student_id" gorm:"index"`
	CustomerName      string          `json:"customer_name" gorm:"size:200"`
	ReservedByUserID  uint            `json:"reserved_by_user_id"`
	PeopleCount       int             `json:"people_count" gorm:"not null"`
	StartTime         time.Time       `json:"start_time" gorm:"not null"`
	EndTime           time.Time       `json:"end_time" gorm:"not null"`
	HourlyRate        decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount        decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null"`
	PaymentStatus     string          `json:"payment_status" gorm:"size:50;not null;default:'pending'"`
	Status            string          `json:"status" gorm:"size:50;not null;default:'pending'"`
	CheckInAt         *time.Time      `json:"check_in_at"`
	CheckOutAt        *time.Time      `json:"check_out_at"`

	// Relationships
	SharedWorkspace SharedWorkspace `json:"shared_workspace,omitempty" gorm:"foreignKey:SharedWorkspaceID"`
	Student         *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Payment is an immutable ledger row. OwnerType/OwnerID identify exactly one
// owning obligation (course registration, cafeteria order, desk booking or
// shared booking). Posted rows are never updated or deleted; corrections are
// new rows with Type "adjustment" or "refund".
type Payment struct {
	BaseModel
	BranchID          uint            `json:"branch_id" gorm:"not null"`
	OwnerType         string          `json:"owner_type" gorm:"size:50;not null;index:idx_payment_owner"`
	OwnerID           uint            `json:"owner_id" gorm:"not null;index:idx_payment_owner"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method            string          `json:"method" gorm:"size:50;not null"`                 // cash, transfer, credit_card, debit_card
	Type              string          `json:"type" gorm:"size:50;not null;default:'payment'"` // payment, adjustment, refund
	Source            string          `json:"source" gorm:"size:50;not null"`                 // course, cafeteria, desk, shared
	ReceiptRef        string          `json:"receipt_ref" gorm:"size:100;uniqueIndex"`
	ProcessedByUserID uint            `json:"processed_by_user_id"`
	Note              string          `json:"note" gorm:"size:500"`
}

// Payment methods accepted at the counter
const (
	PaymentMethodCash       = "cash"
	PaymentMethodTransfer   = "transfer"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
)

// Payment row types
const (
	PaymentTypePayment    = "payment"
	PaymentTypeAdjustment = "adjustment"
	PaymentTypeRefund     = "refund"
)

// Certificate is issued for a completed course registration with at least
// one posted payment. Issuance is a side effect, not a ledger mutation.
type Certificate struct {
	BaseModel
	RegistrationID uint      `json:"registration_id" gorm:"not null;uniqueIndex"`
	StudentID      uint      `json:"student_id" gorm:"not null"`
	CourseID       uint      `json:"course_id" gorm:"not null"`
	CertificateNo  string    `json:"certificate_no" gorm:"size:100;uniqueIndex"`
	IssuedByUserID uint      `json:"issued_by_user_id"`
	IssuedAt       time.Time `json:"issued_at"`

	// Relationships
	Registration CourseRegistration `json:"registration,omitempty" gorm:"foreignKey:RegistrationID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null"` // info, warning, error, success
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
