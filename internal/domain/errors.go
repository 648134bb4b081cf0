package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated    = errors.New("no identity bound")
	ErrCartLoading         = errors.New("cart is still loading")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingDeliveryInfo = errors.New("delivery address and phone are required")
	ErrPersistence         = errors.New("persistent store failure")
	ErrOrderNumberConflict = errors.New("order number already taken")
	ErrOrderCreationFailed = errors.New("order header insert failed")
	ErrOrderNotFound       = errors.New("order not found")
)

// PartialOrderError reports an order header that was persisted without its
// lines. It must never be collapsed into a generic failure: recovery needs
// the id of the orphaned order.
type PartialOrderError struct {
	OrderID     uuid.UUID
	OrderNumber string
	Err         error
}

func (e *PartialOrderError) Error() string {
	return fmt.Sprintf("order %s (%s) created but its items were not: %v", e.OrderID, e.OrderNumber, e.Err)
}

func (e *PartialOrderError) Unwrap() error {
	return e.Err
}
