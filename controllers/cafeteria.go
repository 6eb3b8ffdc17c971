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

type CafeteriaController struct {
	service *services.OrderService
}

func NewCafeteriaController() *CafeteriaController {
	return &CafeteriaController{service: services.NewOrderService()}
}

// GetItems returns the cafeteria menu
func (cc *CafeteriaController) GetItems(c *fiber.Ctx) error {
	var items []models.CafeteriaItem
	query := database.DB.Model(&models.CafeteriaItem{})

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	if err := query.Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": len(items),
	})
}

// CreateItem adds a menu item
func (cc *CafeteriaController) CreateItem(c *fiber.Ctx) error {
	var item models.CafeteriaItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if item.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Item name is required"})
	}
	if item.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}
	if item.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price cannot be negative"})
	}
	if item.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Stock quantity cannot be negative"})
	}

	item.Active = true
	if err := database.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
	}

	middleware.LogActivity(c, "CREATE", "cafeteria_items", item.ID, item)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item created successfully",
		"item":    item,
	})
}

// UpdateItem updates a menu item (price, stock, availability)
func (cc *CafeteriaController) UpdateItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item models.CafeteriaItem
	if err := database.DB.First(&item, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}

	var updateData models.CafeteriaItem
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := database.DB.Model(&item).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update item"})
	}

	middleware.LogActivity(c, "UPDATE", "cafeteria_items", item.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Item updated successfully",
		"item":    item,
	})
}

// GetOrders returns cafeteria orders with optional filters
func (cc *CafeteriaController) GetOrders(c *fiber.Ctx) error {
	var orders []models.CafeteriaOrder
	query := database.DB.Model(&models.CafeteriaOrder{}).
		Preload("Items").Preload("Items.Item")

	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}

	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  len(orders),
	})
}

// GetOrder returns a specific order with its lines
func (cc *CafeteriaController) GetOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := cc.service.Get(uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"order": order})
}

type createOrderRequest struct {
	BranchID     uint   `json:"branch_id"`
	StudentID    *uint  `json:"student_id"`
	CustomerName string `json:"customer_name"`
	Discount     string `json:"discount"`
	Tax          string `json:"tax"`
	Notes        string `json:"notes"`
	Lines        []struct {
		ItemID   uint `json:"item_id"`
		Quantity int  `json:"quantity"`
	} `json:"lines"`
}

// CreateOrder builds a new cafeteria order from line items
func (cc *CafeteriaController) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch ID is required"})
	}

	discount := decimal.Zero
	if req.Discount != "" {
		var err error
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid discount"})
		}
	}
	tax := decimal.Zero
	if req.Tax != "" {
		var err error
		if tax, err = decimal.NewFromString(req.Tax); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tax"})
		}
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	in := services.CreateOrderInput{
		BranchID:        req.BranchID,
		StudentID:       req.StudentID,
		CustomerName:    req.CustomerName,
		CreatedByUserID: user.ID,
		Discount:        discount,
		Tax:             tax,
		Notes:           req.Notes,
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, services.OrderLineInput{ItemID: line.ItemID, Quantity: line.Quantity})
	}

	order, err := cc.service.CreateOrder(in)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "cafeteria_orders", order.ID, order)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

// UpdateOrderStatus advances an order one step through its lifecycle
func (cc *CafeteriaController) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	order, err := cc.service.AdvanceStatus(uint(id), req.Status, user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "cafeteria_orders", order.ID, req)

	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}

// CancelOrder cancels an order and restores its stock
func (cc *CafeteriaController) CancelOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	order, err := cc.service.Cancel(uint(id), user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "cafeteria_orders", order.ID, fiber.Map{"status": "cancelled"})

	return c.JSON(fiber.Map{
		"message": "Order cancelled, stock restored",
		"order":   order,
	})
}

// RecordOrderPayment posts a payment against an order
func (cc *CafeteriaController) RecordOrderPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
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

	order, err := cc.service.RecordPayment(uint(id), amount, req.Method, user.ID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", order.ID, req)

	return c.JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"order":   order,
	})
}
