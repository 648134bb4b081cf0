package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the current owner's full cart as read from the store.
type Cart struct {
	OwnerID string
	Lines   []CartLine
}

// CartLine is one (owner, menu item) pairing. The store keeps at most one
// line per pairing; adds for an item already present merge into it.
type CartLine struct {
	ID                  uuid.UUID
	OwnerID             string
	MenuItemID          uuid.UUID
	Quantity            int32
	SpecialInstructions string

	// Item is the joined menu item, used for display pricing. Order totals
	// are snapshotted from here, not from a fresh catalog read.
	Item MenuItem

	CreatedAt time.Time
	UpdatedAt time.Time
}
