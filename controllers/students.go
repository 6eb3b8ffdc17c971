package controllers

import (
	"strconv"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct{}

// GetStudents returns students with optional filters
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	var students []models.Student
	query := database.DB.Model(&models.Student{}).Preload("Branch")

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	query.Count(&total)

	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GetStudent returns a specific student by ID
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.Preload("Branch").First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	return c.JSON(fiber.Map{"student": student})
}

// CreateStudent registers a new student record
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := c.BodyParser(&student); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if student.FirstName == "" || student.LastName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "First name and last name are required"})
	}
	if student.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}

	var branch models.Branch
	if err := database.DB.First(&branch, student.BranchID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch not found"})
	}

	student.IsActive = true
	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, student)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// UpdateStudent updates an existing student record
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var updateData models.Student
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := database.DB.Model(&student).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// DeactivateStudent soft-disables a student record
func (sc *StudentController) DeactivateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	if err := database.DB.Model(&student).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate student"})
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, fiber.Map{"is_active": false})

	return c.JSON(fiber.Map{"message": "Student deactivated successfully"})
}
