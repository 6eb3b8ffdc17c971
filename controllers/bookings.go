package controllers

import (
	"strconv"
	"time"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"
	"brightpath_go/services"
	"brightpath_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type BookingController struct {
	service *services.BookingService
}

func NewBookingController() *BookingController {
	return &BookingController{service: services.NewBookingService()}
}

// GetRooms returns bookable rooms
func (bc *BookingController) GetRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	query := database.DB.Model(&models.Room{})

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rooms"})
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
		"total": len(rooms),
	})
}

// CreateRoom adds a bookable room
func (bc *BookingController) CreateRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := c.BodyParser(&room); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if room.RoomName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Room name is required"})
	}
	if room.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}
	if room.HourlyRate.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Hourly rate cannot be negative"})
	}

	if room.Status == "" {
		room.Status = "available"
	}
	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create room"})
	}

	middleware.LogActivity(c, "CREATE", "rooms", room.ID, room)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Room created successfully",
		"room":    room,
	})
}

type availabilityRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// CheckAvailability reports whether a room is free over a window
func (bc *BookingController) CheckAvailability(c *fiber.Ctx) error {
	roomID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var req availabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	available, err := bc.service.CheckAvailability(uint(roomID), req.StartTime, req.EndTime)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"room_id":    roomID,
		"start_time": req.StartTime,
		"end_time":   req.EndTime,
		"available":  available,
	})
}

// GetBookings returns desk bookings with optional filters
func (bc *BookingController) GetBookings(c *fiber.Ctx) error {
	var bookings []models.WorkspaceBooking
	query := database.DB.Model(&models.WorkspaceBooking{}).
		Preload("Room").Preload("Charges")

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if roomID := c.Query("room_id"); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("start_time desc").Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// GetBooking returns a specific desk booking
func (bc *BookingController) GetBooking(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := bc.service.Get(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

type createBookingRequest struct {
	RoomID       uint      `json:"room_id"`
	StudentID    *uint     `json:"student_id"`
	CustomerName string    `json:"customer_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// CreateBooking reserves a room for a window
func (bc *BookingController) CreateBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RoomID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Room ID is required"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	booking, err := bc.service.CreateBooking(services.CreateBookingInput{
		RoomID:           req.RoomID,
		StudentID:        req.StudentID,
		CustomerName:     req.CustomerName,
		ReservedByUserID: user.ID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	})
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "bookings", booking.ID, booking)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// ConfirmBooking moves a pending booking to confirmed
func (bc *BookingController) ConfirmBooking(c *fiber.Ctx) error {
	return bc.transition(c, bc.service.Confirm, "Booking confirmed")
}

// CheckIn records arrival for a booking
func (bc *BookingController) CheckIn(c *fiber.Ctx) error {
	return bc.transition(c, bc.service.CheckIn, "Checked in")
}

// CheckOut completes a session and reconciles the final cost
func (bc *BookingController) CheckOut(c *fiber.Ctx) error {
	return bc.transition(c, bc.service.CheckOut, "Checked out")
}

// CancelBooking releases the slot before check-in
func (bc *BookingController) CancelBooking(c *fiber.Ctx) error {
	return bc.transition(c, bc.service.Cancel, "Booking cancelled")
}

func (bc *BookingController) transition(c *fiber.Ctx, fn func(uint) (*models.WorkspaceBooking, error), message string) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := fn(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "bookings", booking.ID, fiber.Map{"status": booking.Status})

	return c.JSON(fiber.Map{
		"message": message,
		"booking": booking,
	})
}

type addChargeRequest struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

// AddCharge accrues an add-on cost against a checked-in session
func (bc *BookingController) AddCharge(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req addChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	booking, err := bc.service.AddCharge(uint(id), req.Kind, amount, user.ID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "booking_charges", booking.ID, req)

	return c.JSON(fiber.Map{
		"message": "Charge added",
		"booking": booking,
	})
}

// RecordBookingPayment posts a payment against a desk booking
func (bc *BookingController) RecordBookingPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	amount, err := req.parse()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}
	if req.Method != "" && !utils.IsValidPaymentMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment method"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	booking, err := bc.service.RecordPayment(uint(id), amount, req.Method, user.ID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", booking.ID, req)

	return c.JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"booking": booking,
	})
}
