package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jadegarden/storefront/internal/domain"
	"github.com/jadegarden/storefront/internal/port"
	"github.com/jadegarden/storefront/internal/pricing"
)

// Checkout turns a cart into a persisted order. The header and line writes
// are independent single-row operations with no cross-table transaction, so
// a failure between them is surfaced as *domain.PartialOrderError instead
// of being masked as a generic failure.
type Checkout struct {
	orders port.OrderRepository
	calc   pricing.Calculator
	logger *slog.Logger

	now func() time.Time
}

func NewCheckout(orders port.OrderRepository, calc pricing.Calculator, logger *slog.Logger) (*Checkout, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Checkout{
		orders: orders,
		calc:   calc,
		logger: logger,
		now:    time.Now,
	}, nil
}

// PlaceOrder runs the full placement sequence:
//
//  1. validate inputs locally, no remote calls
//  2. generate an order number
//  3. snapshot-price the cart lines from their cached menu items
//  4. insert the order header (retrying once on a number collision)
//  5. insert the order lines
//  6. clear the cart; a failure here is logged, never returned
//
// Prices come from the cart's cached lines, never a fresh catalog read: the
// order total must match what the user saw.
func (c *Checkout) PlaceOrder(ctx context.Context, cart *CartStore, deliveryAddress, phone, specialInstructions string) (domain.Order, error) {
	if cart == nil || cart.OwnerID() == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	deliveryAddress = strings.TrimSpace(deliveryAddress)
	phone = strings.TrimSpace(phone)
	if deliveryAddress == "" || phone == "" {
		return domain.Order{}, domain.ErrMissingDeliveryInfo
	}

	order := domain.Order{
		OwnerID:             cart.OwnerID(),
		OrderNumber:         c.orderNumber(),
		Status:              domain.OrderStatusPending,
		TotalAmount:         c.calc.OrderTotal(lines),
		DeliveryAddress:     deliveryAddress,
		Phone:               phone,
		SpecialInstructions: specialInstructions,
		PaymentMethod:       domain.PaymentMethodWeChat,
		PaymentStatus:       domain.PaymentStatusPending,
	}

	stored, err := c.orders.InsertOrder(ctx, order)
	if errors.Is(err, domain.ErrOrderNumberConflict) {
		// Best-effort uniqueness scheme: regenerate and retry exactly once.
		order.OrderNumber = c.orderNumber()
		stored, err = c.orders.InsertOrder(ctx, order)
	}
	if err != nil {
		if errors.Is(err, domain.ErrOrderNumberConflict) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		orderLines = append(orderLines, domain.OrderLine{
			OrderID:             stored.ID,
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			UnitPrice:           line.Item.Price,
			TotalPrice:          c.calc.LineTotal(line),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	storedLines, err := c.orders.InsertOrderLines(ctx, orderLines)
	if err != nil {
		// The header exists without its lines. The cart stays intact;
		// recovery needs the orphaned order id.
		return domain.Order{}, &domain.PartialOrderError{
			OrderID:     stored.ID,
			OrderNumber: stored.OrderNumber,
			Err:         err,
		}
	}
	stored.Lines = storedLines

	if err := cart.Clear(ctx); err != nil {
		// The order is valid; stale cart lines reconcile on the next load.
		c.logger.Warn("cart clear after order failed",
			"order_id", stored.ID, "order_number", stored.OrderNumber, "error", err)
	}

	c.logger.Info("order placed",
		"order_id", stored.ID, "order_number", stored.OrderNumber,
		"total", stored.TotalAmount.String(), "lines", len(stored.Lines))

	return stored, nil
}

func (c *Checkout) GetOrder(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error) {
	if ownerID == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}

	order, err := c.orders.GetOrder(ctx, ownerID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (c *Checkout) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	orders, err := c.orders.ListOrders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return orders, nil
}

// orderNumber is ORD + calendar day + the last six digits of epoch millis.
// Human-legible and collision-resistant at realistic throughput, nothing
// more; the unique index on order_number is the actual arbiter.
func (c *Checkout) orderNumber() string {
	t := c.now()
	millis := t.UnixMilli() % 1_000_000
	return fmt.Sprintf("ORD%s%06d", t.Format("20060102"), millis)
}
