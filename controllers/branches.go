package controllers

import (
	"strconv"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"

	"github.com/gofiber/fiber/v2"
)

type BranchController struct{}

// GetBranches returns all branches
func (bc *BranchController) GetBranches(c *fiber.Ctx) error {
	var branches []models.Branch
	query := database.DB.Model(&models.Branch{})

	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	if err := query.Find(&branches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch branches"})
	}

	return c.JSON(fiber.Map{
		"branches": branches,
		"total":    len(branches),
	})
}

// GetBranch returns a specific branch by ID
func (bc *BranchController) GetBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var branch models.Branch
	if err := database.DB.First(&branch, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}

	return c.JSON(fiber.Map{"branch": branch})
}

// CreateBranch creates a new branch
func (bc *BranchController) CreateBranch(c *fiber.Ctx) error {
	var branch models.Branch
	if err := c.BodyParser(&branch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if branch.Name == "" || branch.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name and code are required"})
	}

	var existing models.Branch
	if err := database.DB.Where("code = ?", branch.Code).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Branch with this code already exists"})
	}

	branch.Active = true
	if err := database.DB.Create(&branch).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create branch"})
	}

	middleware.LogActivity(c, "CREATE", "branches", branch.ID, branch)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Branch created successfully",
		"branch":  branch,
	})
}

// UpdateBranch updates an existing branch
func (bc *BranchController) UpdateBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var branch models.Branch
	if err := database.DB.First(&branch, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}

	var updateData models.Branch
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := database.DB.Model(&branch).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update branch"})
	}

	middleware.LogActivity(c, "UPDATE", "branches", branch.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Branch updated successfully",
		"branch":  branch,
	})
}
