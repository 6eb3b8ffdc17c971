package controllers

import (
	"strconv"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/middleware"
	"brightpath_go/models"
	"brightpath_go/services"
	"brightpath_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentController struct {
	service        *services.PaymentService
	reconciliation *services.ReconciliationService
}

func NewPaymentController() *PaymentController {
	return &PaymentController{
		service:        services.NewPaymentService(),
		reconciliation: services.NewReconciliationService(),
	}
}

// GetPayments returns ledger rows, filterable by owner and branch
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	ownerType := c.Query("owner_type")
	ownerID := c.Query("owner_id")

	if ownerType != "" && ownerID != "" {
		id, err := strconv.ParseUint(ownerID, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid owner ID"})
		}
		payments, err := pc.service.ListPayments(ledger.Owner{Type: ownerType, ID: uint(id)})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"payments": payments,
			"total":    len(payments),
		})
	}

	var payments []models.Payment
	query := database.DB.Model(&models.Payment{})
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if err := query.Order("id desc").Limit(200).Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    len(payments),
	})
}

type postPaymentRequest struct {
	OwnerType string `json:"owner_type"`
	OwnerID   uint   `json:"owner_id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Type      string `json:"type"`
	Note      string `json:"note"`
}

// PostPayment appends one ledger row against any obligation. This is the
// generic entry point; refunds and adjustments go through here with an
// explicit type.
func (pc *PaymentController) PostPayment(c *fiber.Ctx) error {
	var req postPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}
	if req.Method != "" && !utils.IsValidPaymentMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment method"})
	}
	switch req.Type {
	case "", models.PaymentTypePayment, models.PaymentTypeAdjustment, models.PaymentTypeRefund:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment type"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	payment, err := pc.service.Post(services.PostPaymentInput{
		Owner:             ledger.Owner{Type: req.OwnerType, ID: req.OwnerID},
		Amount:            amount,
		Method:            req.Method,
		Type:              req.Type,
		ProcessedByUserID: user.ID,
		Note:              req.Note,
	})
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", payment.ID, payment)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment posted successfully",
		"payment": payment,
	})
}

// GetReceipt looks up a payment by its receipt reference
func (pc *PaymentController) GetReceipt(c *fiber.Ctx) error {
	ref := c.Params("ref")
	if ref == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Receipt reference is required"})
	}

	var payment models.Payment
	if err := database.DB.Where("receipt_ref = ?", ref).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not found"})
	}

	return c.JSON(fiber.Map{"payment": payment})
}

// RunAudit recomputes every obligation's balance from the ledger and
// reports any that diverge from the cached amounts
func (pc *PaymentController) RunAudit(c *fiber.Ctx) error {
	inconsistencies, err := pc.reconciliation.AuditAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Audit failed"})
	}

	return c.JSON(fiber.Map{
		"inconsistencies": inconsistencies,
		"count":           len(inconsistencies),
		"consistent":      len(inconsistencies) == 0,
	})
}
