package services

import (
	"fmt"
	"strings"
	"time"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService runs the cafeteria order lifecycle: build an order from line
// items against live stock, move it through the preparation state machine
// and take payments through the ledger.
type OrderService struct {
	payments *PaymentService
}

func NewOrderService() *OrderService {
	return &OrderService{payments: NewPaymentService()}
}

// orderTransitions is the forward-only state machine. Cancellation is
// handled by Cancel because it also has to restore stock.
var orderTransitions = map[string]string{
	models.OrderStatusPending:   models.OrderStatusPreparing,
	models.OrderStatusPreparing: models.OrderStatusReady,
	models.OrderStatusReady:     models.OrderStatusDelivered,
}

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ItemID   uint
	Quantity int
}

// CreateOrderInput describes a new cafeteria order. Discount and Tax are
// explicit amounts; the total applies the discount before the tax.
type CreateOrderInput struct {
	BranchID        uint
	StudentID       *uint
	CustomerName    string
	CreatedByUserID uint
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Notes           string
	Lines           []OrderLineInput
}

// CreateOrder builds an order from line items. Each referenced item is
// locked, its stock checked and decremented, and its current price
// snapshotted onto the line - all in one transaction with the order insert,
// so a rejected line leaves no stock change behind. Insufficient stock is a
// hard rejection, never a negative stock state.
func (s *OrderService) CreateOrder(in CreateOrderInput) (*models.CafeteriaOrder, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one line item", ledger.ErrInvalidAmount)
	}
	in.Discount = ledger.Normalize(in.Discount)
	in.Tax = ledger.Normalize(in.Tax)
	if in.Discount.IsNegative() || in.Tax.IsNegative() {
		return nil, fmt.Errorf("%w: discount and tax cannot be negative", ledger.ErrInvalidAmount)
	}

	var order *models.CafeteriaOrder
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		subTotal := decimal.Zero
		items := make([]models.CafeteriaOrderItem, 0, len(in.Lines))

		for _, line := range in.Lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive for item %d", ledger.ErrInvalidAmount, line.ItemID)
			}

			var item models.CafeteriaItem
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.ItemID).Error; err != nil {
				return fmt.Errorf("%w: cafeteria item %d", ledger.ErrNotFound, line.ItemID)
			}
			if !item.Active {
				return fmt.Errorf("%w: cafeteria item %q is inactive", ledger.ErrNotFound, item.Name)
			}
			if line.Quantity > item.StockQuantity {
				return fmt.Errorf("%w: %q has %d left, requested %d",
					ledger.ErrInsufficientStock, item.Name, item.StockQuantity, line.Quantity)
			}

			if err := tx.Model(&item).
				Update("stock_quantity", item.StockQuantity-line.Quantity).Error; err != nil {
				return err
			}

			lineTotal := ledger.Normalize(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.CafeteriaOrderItem{
				ItemID:    item.ID,
				Quantity:  line.Quantity,
				UnitPrice: item.Price,
				LineTotal: lineTotal,
			})
			subTotal = subTotal.Add(lineTotal)
		}

		subTotal = ledger.Normalize(subTotal)
		if in.Discount.GreaterThan(subTotal) {
			return fmt.Errorf("%w: discount %s exceeds subtotal %s", ledger.ErrInvalidAmount, in.Discount, subTotal)
		}
		total := ledger.OrderTotal(subTotal, in.Discount, in.Tax)

		order = &models.CafeteriaOrder{
			BranchID:        in.BranchID,
			OrderNumber:     newOrderNumber(),
			StudentID:       in.StudentID,
			CustomerName:    in.CustomerName,
			SubTotal:        subTotal,
			Discount:        in.Discount,
			Tax:             in.Tax,
			TotalAmount:     total,
			PaidAmount:      decimal.Zero,
			PaymentStatus:   ledger.DeriveStatus(total, decimal.Zero, true),
			Status:          models.OrderStatusPending,
			CreatedByUserID: in.CreatedByUserID,
			Notes:           in.Notes,
			Items:           items,
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.String(),
		"lines":        len(order.Items),
	}).Info("cafeteria order created")

	return order, nil
}

// AdvanceStatus moves an order one step through
// pending -> preparing -> ready -> delivered. Any other jump is rejected.
// Preparing stamps the preparing user and time, delivered the delivering
// ones. next=cancelled routes to Cancel so stock restoration stays atomic
// with the status change.
func (s *OrderService) AdvanceStatus(orderID uint, next string, userID uint) (*models.CafeteriaOrder, error) {
	if next == models.OrderStatusCancelled {
		return s.Cancel(orderID, userID)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var order models.CafeteriaOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			return fmt.Errorf("%w: order %d", ledger.ErrNotFound, orderID)
		}

		if orderTransitions[order.Status] != next {
			return fmt.Errorf("%w: %s -> %s", ledger.ErrInvalidTransition, order.Status, next)
		}

		now := time.Now()
		updates := map[string]interface{}{"status": next}
		switch next {
		case models.OrderStatusPreparing:
			updates["prepared_by_user_id"] = userID
			updates["prepared_at"] = now
		case models.OrderStatusDelivered:
			updates["delivered_by_user_id"] = userID
			updates["delivered_at"] = now
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// Cancel cancels an order from pending or preparing and puts every line's
// quantity back on the item's stock, atomically with the status change.
// Once an order is ready or delivered it can no longer be cancelled.
func (s *OrderService) Cancel(orderID uint, userID uint) (*models.CafeteriaOrder, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var order models.CafeteriaOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&order, orderID).Error; err != nil {
			return fmt.Errorf("%w: order %d", ledger.ErrNotFound, orderID)
		}

		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPreparing {
			return fmt.Errorf("%w: cannot cancel a %s order", ledger.ErrInvalidTransition, order.Status)
		}

		for _, line := range order.Items {
			var item models.CafeteriaItem
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, line.ItemID).Error; err != nil {
				return err
			}
			if err := tx.Model(&item).
				Update("stock_quantity", item.StockQuantity+line.Quantity).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if order.PaidAmount.IsZero() {
			updates["payment_status"] = ledger.StatusCancelled
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("order_id", orderID).Info("cafeteria order cancelled, stock restored")
	return s.Get(orderID)
}

// RecordPayment posts a payment against an order through the ledger.
func (s *OrderService) RecordPayment(orderID uint, amount decimal.Decimal, method string, processedBy uint, note string) (*models.CafeteriaOrder, error) {
	_, err := s.payments.Post(PostPaymentInput{
		Owner:             ledger.ForCafeteriaOrder(orderID),
		Amount:            amount,
		Method:            method,
		ProcessedByUserID: processedBy,
		Note:              note,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// Get returns one order with its lines preloaded.
func (s *OrderService) Get(orderID uint) (*models.CafeteriaOrder, error) {
	var order models.CafeteriaOrder
	if err := database.DB.Preload("Items").Preload("Items.Item").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("%w: order %d", ledger.ErrNotFound, orderID)
	}
	return &order, nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
