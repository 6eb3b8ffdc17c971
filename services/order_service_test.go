package services

import (
	"errors"
	"testing"

	"brightpath_go/database"
	"brightpath_go/ledger"
	"brightpath_go/models"

	"github.com/shopspring/decimal"
)

func TestCreateOrderTotalsAndStock(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)
	sandwich := seedItem(t, branch.ID, "Sandwich", "85.00", 5)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Discount:        amount(t, "20.00"),
		Tax:             amount(t, "12.25"),
		Lines: []OrderLineInput{
			{ItemID: coffee.ID, Quantity: 2},
			{ItemID: sandwich.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2x55 + 85 = 195; 195 - 20 + 12.25 = 187.25
	if !order.SubTotal.Equal(amount(t, "195.00")) {
		t.Fatalf("expected subtotal 195.00, got %s", order.SubTotal)
	}
	if !order.TotalAmount.Equal(amount(t, "187.25")) {
		t.Fatalf("expected total 187.25, got %s", order.TotalAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.OrderNumber == "" {
		t.Fatalf("expected order number")
	}

	var item models.CafeteriaItem
	if err := database.DB.First(&item, coffee.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.StockQuantity != 8 {
		t.Fatalf("expected stock 8 after order, got %d", item.StockQuantity)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 3)
	sandwich := seedItem(t, branch.ID, "Sandwich", "85.00", 1)

	svc := NewOrderService()
	_, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines: []OrderLineInput{
			{ItemID: coffee.ID, Quantity: 2},
			{ItemID: sandwich.ID, Quantity: 2},
		},
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The whole order is rejected; the first line's decrement rolled back.
	var item models.CafeteriaItem
	if err := database.DB.First(&item, coffee.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.StockQuantity != 3 {
		t.Fatalf("expected stock untouched at 3, got %d", item.StockQuantity)
	}
}

func TestCreateOrderDiscountExceedsSubtotal(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	_, err := NewOrderService().CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Discount:        amount(t, "100.00"),
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 1}},
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestOrderStatusMachine(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Skipping a step is rejected.
	if _, err := svc.AdvanceStatus(order.ID, models.OrderStatusReady, 1); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending -> ready, got %v", err)
	}

	order, err = svc.AdvanceStatus(order.ID, models.OrderStatusPreparing, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.PreparedAt == nil || order.PreparedByUserID == nil || *order.PreparedByUserID != 7 {
		t.Fatalf("expected preparing stamp")
	}

	if order, err = svc.AdvanceStatus(order.ID, models.OrderStatusReady, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order, err = svc.AdvanceStatus(order.ID, models.OrderStatusDelivered, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.DeliveredAt == nil {
		t.Fatalf("expected delivered stamp")
	}

	// Delivered is terminal.
	if _, err := svc.AdvanceStatus(order.ID, models.OrderStatusPending, 1); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from delivered, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err = svc.Cancel(order.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != models.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if order.CancelledAt == nil {
		t.Fatalf("expected cancellation stamp")
	}
	if order.PaymentStatus != ledger.StatusCancelled {
		t.Fatalf("expected payment status cancelled for unpaid order, got %s", order.PaymentStatus)
	}

	var item models.CafeteriaItem
	if err := database.DB.First(&item, coffee.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", item.StockQuantity)
	}
}

func TestCancelDeliveredOrderRejected(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, next := range []string{models.OrderStatusPreparing, models.OrderStatusReady, models.OrderStatusDelivered} {
		if order, err = svc.AdvanceStatus(order.ID, next, 1); err != nil {
			t.Fatalf("unexpected error advancing to %s: %v", next, err)
		}
	}

	if _, err := svc.Cancel(order.ID, 1); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderPaymentLifecycle(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err = svc.RecordPayment(order.ID, amount(t, "110.00"), models.PaymentMethodCash, 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.PaymentStatus != ledger.StatusFullyPaid {
		t.Fatalf("expected fully_paid, got %s", order.PaymentStatus)
	}

	// A fully paid order rejects further payments.
	if _, err := svc.RecordPayment(order.ID, decimal.NewFromInt(1), models.PaymentMethodCash, 1, ""); !errors.Is(err, ledger.ErrOwnerSettled) {
		t.Fatalf("expected ErrOwnerSettled, got %v", err)
	}

	// Cancelled orders reject payments too.
	coffee2 := seedItem(t, branch.ID, "Latte", "60.00", 5)
	other, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee2.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(other.ID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RecordPayment(other.ID, decimal.NewFromInt(10), models.PaymentMethodCash, 1, ""); !errors.Is(err, ledger.ErrOwnerSettled) {
		t.Fatalf("expected ErrOwnerSettled for cancelled order, got %v", err)
	}
}

func TestOrderUnitPriceSnapshot(t *testing.T) {
	setupTestDB(t)
	branch := seedBranch(t)
	coffee := seedItem(t, branch.ID, "Americano", "55.00", 10)

	svc := NewOrderService()
	order, err := svc.CreateOrder(CreateOrderInput{
		BranchID:        branch.ID,
		CreatedByUserID: 1,
		Lines:           []OrderLineInput{{ItemID: coffee.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := database.DB.Model(&models.CafeteriaItem{}).Where("id = ?", coffee.ID).
		Update("price", amount(t, "70.00")).Error; err != nil {
		t.Fatalf("failed to update item price: %v", err)
	}

	refreshed, err := svc.Get(order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refreshed.Items[0].UnitPrice.Equal(amount(t, "55.00")) {
		t.Fatalf("expected snapshotted unit price 55.00, got %s", refreshed.Items[0].UnitPrice)
	}
	if !refreshed.TotalAmount.Equal(amount(t, "55.00")) {
		t.Fatalf("expected total 55.00, got %s", refreshed.TotalAmount)
	}
}
