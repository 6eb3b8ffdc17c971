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
)

type SharedBookingController struct {
	service *services.SharedBookingService
}

func NewSharedBookingController() *SharedBookingController {
	return &SharedBookingController{service: services.NewSharedBookingService()}
}

// GetWorkspaces returns shared workspaces
func (sc *SharedBookingController) GetWorkspaces(c *fiber.Ctx) error {
	var workspaces []models.SharedWorkspace
	query := database.DB.Model(&models.SharedWorkspace{})

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	if err := query.Find(&workspaces).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch workspaces"})
	}

	return c.JSON(fiber.Map{
		"workspaces": workspaces,
		"total":      len(workspaces),
	})
}

// CreateWorkspace adds a shared workspace
func (sc *SharedBookingController) CreateWorkspace(c *fiber.Ctx) error {
	var workspace models.SharedWorkspace
	if err := c.BodyParser(&workspace); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if workspace.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Workspace name is required"})
	}
	if workspace.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}
	if workspace.MaxCapacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Max capacity must be positive"})
	}
	if workspace.HourlyRate.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Hourly rate cannot be negative"})
	}

	if workspace.Status == "" {
		workspace.Status = "available"
	}
	workspace.CurrentOccupancy = 0
	if err := database.DB.Create(&workspace).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create workspace"})
	}

	middleware.LogActivity(c, "CREATE", "shared_workspaces", workspace.ID, workspace)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Workspace created successfully",
		"workspace": workspace,
	})
}

type sharedAvailabilityRequest struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PeopleCount int       `json:"people_count"`
}

// CheckAvailability reports whether a workspace can seat a party over a window
func (sc *SharedBookingController) CheckAvailability(c *fiber.Ctx) error {
	workspaceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace ID"})
	}

	var req sharedAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PeopleCount <= 0 {
		req.PeopleCount = 1
	}

	available, err := sc.service.CheckAvailability(uint(workspaceID), req.StartTime, req.EndTime, req.PeopleCount)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workspace_id": workspaceID,
		"start_time":   req.StartTime,
		"end_time":     req.EndTime,
		"people_count": req.PeopleCount,
		"available":    available,
	})
}

// GetBookings returns shared workspace bookings with optional filters
func (sc *SharedBookingController) GetBookings(c *fiber.Ctx) error {
	var bookings []models.SharedWorkspaceBooking
	query := database.DB.Model(&models.SharedWorkspaceBooking{}).Preload("SharedWorkspace")

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if workspaceID := c.Query("workspace_id"); workspaceID != "" {
		query = query.Where("shared_workspace_id = ?", workspaceID)
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

// GetBooking returns a specific shared booking
func (sc *SharedBookingController) GetBooking(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := sc.service.Get(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

type createSharedBookingRequest struct {
	SharedWorkspaceID uint      `json:"shared_workspace_id"`
	StudentID         *uint     `json:"student_id"`
	CustomerName      string    `json:"customer_name"`
	PeopleCount       int       `json:"people_count"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
}

// CreateBooking reserves seats in a shared workspace
func (sc *SharedBookingController) CreateBooking(c *fiber.Ctx) error {
	var req createSharedBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.SharedWorkspaceID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Workspace ID is required"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	booking, err := sc.service.CreateBooking(services.CreateSharedBookingInput{
		SharedWorkspaceID: req.SharedWorkspaceID,
		StudentID:         req.StudentID,
		CustomerName:      req.CustomerName,
		ReservedByUserID:  user.ID,
		PeopleCount:       req.PeopleCount,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
	})
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "shared_bookings", booking.ID, booking)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// ConfirmBooking moves a pending shared booking to confirmed
func (sc *SharedBookingController) ConfirmBooking(c *fiber.Ctx) error {
	return sc.transition(c, sc.service.Confirm, "Booking confirmed")
}

// CheckIn raises workspace occupancy by the party size
func (sc *SharedBookingController) CheckIn(c *fiber.Ctx) error {
	return sc.transition(c, sc.service.CheckIn, "Checked in")
}

// CheckOut lowers workspace occupancy and completes the booking
func (sc *SharedBookingController) CheckOut(c *fiber.Ctx) error {
	return sc.transition(c, sc.service.CheckOut, "Checked out")
}

// CancelBooking releases the seats before check-in
func (sc *SharedBookingController) CancelBooking(c *fiber.Ctx) error {
	return sc.transition(c, sc.service.Cancel, "Booking cancelled")
}

func (sc *SharedBookingController) transition(c *fiber.Ctx, fn func(uint) (*models.SharedWorkspaceBooking, error), message string) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := fn(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "shared_bookings", booking.ID, fiber.Map{"status": booking.Status})

	return c.JSON(fiber.Map{
		"message": message,
		"booking": booking,
	})
}

// RecordBookingPayment posts a payment against a shared booking
func (sc *SharedBookingController) RecordBookingPayment(c *fiber.Ctx) error {
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

	booking, err := sc.service.RecordPayment(uint(id), amount, req.Method, user.ID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", booking.ID, req)

	return c.JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"booking": booking,
	})
}
