package controllers

import (
	"strconv"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"

	"github.com/gofiber/fiber/v2"
)

type CourseController struct{}

// GetCourses returns courses with optional filters
func (cc *CourseController) GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	query := database.DB.Model(&models.Course{}).Preload("Branch")

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourse returns a specific course with its seat usage
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.Preload("Branch").First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var enrolled int64
	database.DB.Model(&models.CourseRegistration{}).
		Where("course_id = ? AND is_active = ? AND status <> ?",
			course.ID, true, models.RegistrationStatusDropped).
		Count(&enrolled)

	return c.JSON(fiber.Map{
		"course":          course,
		"enrolled_count":  enrolled,
		"available_seats": int64(course.MaxStudents) - enrolled,
	})
}

// CreateCourse creates a new course
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if course.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Course name is required"})
	}
	if course.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}
	if course.MaxStudents <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Max students must be positive"})
	}
	if course.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price cannot be negative"})
	}

	var branch models.Branch
	if err := database.DB.First(&branch, course.BranchID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch not found"})
	}

	if course.Status == "" {
		course.Status = models.CourseStatusPlanned
	}
	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	middleware.LogActivity(c, "CREATE", "courses", course.ID, course)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

// UpdateCourse updates an existing course. Price edits never touch
// existing registrations: their totals are snapshots.
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var updateData models.Course
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if updateData.Status != "" {
		switch updateData.Status {
		case models.CourseStatusPlanned, models.CourseStatusActive,
			models.CourseStatusCompleted, models.CourseStatusCancelled:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course status"})
		}
	}

	if err := database.DB.Model(&course).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	middleware.LogActivity(c, "UPDATE", "courses", course.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"course":  course,
	})
}
