package controllers

import (
	"strconv"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"
	"brightpath_go/services"
	"brightpath_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RegistrationController struct {
	service *services.RegistrationService
}

func NewRegistrationController() *RegistrationController {
	return &RegistrationController{service: services.NewRegistrationService()}
}

// GetRegistrations returns registrations with optional filters
func (rc *RegistrationController) GetRegistrations(c *fiber.Ctx) error {
	var registrations []models.CourseRegistration
	query := database.DB.Model(&models.CourseRegistration{}).
		Preload("Student").Preload("Course")

	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	if err := query.Order("id desc").Find(&registrations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch registrations"})
	}

	return c.JSON(fiber.Map{
		"registrations": registrations,
		"total":         len(registrations),
	})
}

// GetRegistration returns a specific registration
func (rc *RegistrationController) GetRegistration(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID"})
	}

	reg, err := rc.service.Get(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"registration": reg})
}

type enrollRequest struct {
	StudentID   uint    `json:"student_id"`
	CourseID    uint    `json:"course_id"`
	TotalAmount *string `json:"total_amount"`
}

// Enroll registers a student on a course
func (rc *RegistrationController) Enroll(c *fiber.Ctx) error {
	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.StudentID == 0 || req.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Student ID and course ID are required"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	in := services.EnrollInput{
		StudentID:        req.StudentID,
		CourseID:         req.CourseID,
		EnrolledByUserID: user.ID,
	}
	if req.TotalAmount != nil {
		amount, err := decimal.NewFromString(*req.TotalAmount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid total amount"})
		}
		in.TotalAmount = &amount
	}

	reg, err := rc.service.Enroll(in)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "registrations", reg.ID, reg)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Student enrolled successfully",
		"registration": reg,
	})
}

type recordPaymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Note   string `json:"note"`
}

func (r *recordPaymentRequest) parse() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Amount)
}

// RecordPayment posts a payment against a registration
func (rc *RegistrationController) RecordPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID"})
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

	reg, err := rc.service.RecordPayment(uint(id), amount, req.Method, user.ID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", reg.ID, req)

	return c.JSON(fiber.Map{
		"message":      "Payment recorded successfully",
		"registration": reg,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a registration between active, completed and dropped
func (rc *RegistrationController) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reg, err := rc.service.UpdateStatus(uint(id), req.Status)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "registrations", reg.ID, req)

	return c.JSON(fiber.Map{
		"message":      "Registration status updated",
		"registration": reg,
	})
}

// Withdraw soft-deactivates a registration, releasing its seat
func (rc *RegistrationController) Withdraw(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID"})
	}

	reg, err := rc.service.Withdraw(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "registrations", reg.ID, fiber.Map{"is_active": false})

	return c.JSON(fiber.Map{
		"message":      "Registration withdrawn",
		"registration": reg,
	})
}

// IssueCertificate issues a completion certificate for a registration
func (rc *RegistrationController) IssueCertificate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	cert, err := rc.service.IssueCertificate(uint(id), user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "certificates", cert.ID, cert)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Certificate issued",
		"certificate": cert,
	})
}
