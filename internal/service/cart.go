package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jadegarden/storefront/internal/domain"
	"github.com/jadegarden/storefront/internal/port"
	"github.com/jadegarden/storefront/internal/pricing"
)

// CartStore is the single source of truth for one identity's cart. Every
// mutation is written to the persistent store first and applied to the
// in-memory copy only after the write succeeds, so a failed remote call
// never leaves local state ahead of the server.
//
// The store starts in a loading state and rejects mutations until Load has
// run. There is no terminal error state: a failed load surfaces an empty
// ready cart together with the error.
type CartStore struct {
	ownerID string
	carts   port.CartRepository
	menu    port.MenuRepository
	calc    pricing.Calculator
	logger  *slog.Logger

	mu      sync.Mutex
	loading bool
	lines   []domain.CartLine
}

// NewCartStore binds the store to one identity. An empty ownerID is allowed
// at construction; every operation then fails with ErrNotAuthenticated.
func NewCartStore(ownerID string, carts port.CartRepository, menu port.MenuRepository, calc pricing.Calculator, logger *slog.Logger) (*CartStore, error) {
	if carts == nil {
		return nil, fmt.Errorf("carts is nil")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CartStore{
		ownerID: ownerID,
		carts:   carts,
		menu:    menu,
		calc:    calc,
		logger:  logger,
		loading: true,
	}, nil
}

func (s *CartStore) OwnerID() string {
	return s.ownerID
}

// Load fetches the cart from the persistent store, retrying the read once
// silently. The store becomes ready either way; on failure the cart is
// empty and the error is returned for reporting.
func (s *CartStore) Load(ctx context.Context) error {
	if s.ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	cart, err := s.carts.GetCart(ctx, s.ownerID)
	if err != nil {
		cart, err = s.carts.GetCart(ctx, s.ownerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if err != nil {
		s.lines = nil
		s.logger.Error("cart load failed, starting empty", "owner_id", s.ownerID, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.lines = cart.Lines
	return nil
}

// AddItem puts quantity units of a menu item into the cart. If a line for
// the item already exists the quantities merge into it; the store never
// holds two lines for the same item.
func (s *CartStore) AddItem(ctx context.Context, menuItemID uuid.UUID, quantity int32, specialInstructions string) (domain.CartLine, error) {
	if err := s.guard(); err != nil {
		return domain.CartLine{}, err
	}
	if quantity < 1 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	item, err := s.menu.GetItem(ctx, menuItemID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("menu.GetItem: %w", err)
	}
	if !item.IsAvailable {
		return domain.CartLine{}, domain.ErrItemUnavailable
	}

	stored, err := s.carts.UpsertLine(ctx, domain.CartLine{
		OwnerID:             s.ownerID,
		MenuItemID:          menuItemID,
		Quantity:            quantity,
		SpecialInstructions: specialInstructions,
	})
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	stored.Item = item

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].MenuItemID != menuItemID {
			continue
		}
		// Responses may be delivered out of order: a slow first upsert must
		// not roll the cache back behind an already-applied newer merge.
		if staleResponse(stored, s.lines[i]) {
			return s.lines[i], nil
		}
		s.lines[i] = stored
		return stored, nil
	}
	s.lines = append(s.lines, stored)

	return stored, nil
}

// staleResponse reports whether an upsert response is older than the cached
// line it would replace. Merged upserts only ever grow a line's quantity,
// so for the same line id a smaller quantity is always an earlier response;
// the timestamp check covers a line that was deleted and recreated.
func staleResponse(stored, cached domain.CartLine) bool {
	if stored.UpdatedAt.Before(cached.UpdatedAt) {
		return true
	}
	return stored.ID == cached.ID && stored.Quantity < cached.Quantity
}

// UpdateQuantity sets an absolute quantity on a line. Quantities below 1
// are rejected; removal goes through RemoveItem.
func (s *CartStore) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int32) error {
	if err := s.guard(); err != nil {
		return err
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	idx := s.lineIndex(lineID)
	s.mu.Unlock()
	if idx < 0 {
		return domain.ErrLineNotFound
	}

	// Absolute set against the server row, not a local increment, so a
	// concurrent session's change cannot be silently overwritten by stale
	// arithmetic.
	ok, err := s.carts.UpdateQuantity(ctx, s.ownerID, lineID, quantity)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		// Another session removed the line; drop the stale local copy.
		if idx := s.lineIndex(lineID); idx >= 0 {
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		}
		return domain.ErrLineNotFound
	}

	if idx := s.lineIndex(lineID); idx >= 0 {
		s.lines[idx].Quantity = quantity
	}
	return nil
}

// RemoveItem deletes a line. Removing an absent line is a no-op success so
// a double-click cannot surface a spurious failure.
func (s *CartStore) RemoveItem(ctx context.Context, lineID uuid.UUID) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.carts.DeleteLine(ctx, s.ownerID, lineID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.lineIndex(lineID); idx >= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}
	return nil
}

// Clear deletes every line. Safe on an already-empty cart.
func (s *CartStore) Clear(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}

	if err := s.carts.Clear(ctx, s.ownerID); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return nil
}

// ItemCount is the sum of quantities across all lines. Display capping
// ("99+") is the caller's concern.
func (s *CartStore) ItemCount() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int32
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *CartStore) TotalPrice() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calc.CartTotal(s.lines)
}

// Lines returns a copy of the current lines for presentation and checkout.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

func (s *CartStore) guard() error {
	if s.ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return domain.ErrCartLoading
	}
	return nil
}

// lineIndex requires s.mu held.
func (s *CartStore) lineIndex(lineID uuid.UUID) int {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
