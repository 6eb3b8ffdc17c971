package controllers

import (
	"strconv"
	"time"

	"brightpath_go/database"
	"brightpath_go/middleware"
	"brightpath_go/models"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct{}

// GetNotifications returns the authenticated user's notifications
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var notifications []models.Notification
	query := database.DB.Where("user_id = ?", user.ID)
	if unread := c.Query("unread"); unread == "true" {
		query = query.Where("read = ?", false)
	}

	if err := query.Order("id desc").Limit(100).Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// MarkAsRead marks one of the user's notifications as read
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	var notification models.Notification
	if err := database.DB.Where("id = ? AND user_id = ?", uint(id), user.ID).First(&notification).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	now := time.Now()
	if err := database.DB.Model(&notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
