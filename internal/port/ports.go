package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/jadegarden/storefront/internal/domain"
)

// MenuRepository is read-only catalog access. The core never mutates menu
// records.
type MenuRepository interface {
	GetItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	ListItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// UpsertLine inserts a new line, or merges quantities server-side when a
	// line for the same (owner, menu item) already exists. Returns the line
	// as stored.
	UpsertLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)

	// UpdateQuantity sets an absolute quantity on a line owned by ownerID.
	// Returns false when no such line exists.
	UpdateQuantity(ctx context.Context, ownerID string, lineID uuid.UUID, quantity int32) (bool, error)

	// DeleteLine removes a line owned by ownerID. Returns false when the
	// line was already absent.
	DeleteLine(ctx context.Context, ownerID string, lineID uuid.UUID) (bool, error)

	// Clear removes every line owned by ownerID. Safe on an empty cart.
	Clear(ctx context.Context, ownerID string) error
}

// OrderRepository persists order headers and their lines as separate,
// non-atomic operations. InsertOrder reports a duplicate order number as
// domain.ErrOrderNumberConflict.
type OrderRepository interface {
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	InsertOrderLines(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error)
	GetOrder(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error)
}
