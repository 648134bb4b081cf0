package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jadegarden/storefront/internal/domain"
)

// In-memory fakes for the repository ports. Failure injection uses simple
// counters and flags; call counts let tests assert that validation failures
// never reach the store.

type fakeCartRepo struct {
	mu    sync.Mutex
	lines map[uuid.UUID]domain.CartLine

	getCartFailures int
	failUpsert      bool
	failClear       bool

	// onUpsertReturn runs after the server-side state has been applied but
	// before the response is delivered, keyed by upsert call number. Lets
	// tests reorder response delivery.
	onUpsertReturn func(call int)

	getCartCalls int
	upsertCalls  int
	clearCalls   int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[uuid.UUID]domain.CartLine)}
}

func (f *fakeCartRepo) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCartCalls++
	if f.getCartFailures > 0 {
		f.getCartFailures--
		return domain.Cart{}, fmt.Errorf("connection reset")
	}

	cart := domain.Cart{OwnerID: ownerID}
	for _, line := range f.lines {
		if line.OwnerID == ownerID {
			cart.Lines = append(cart.Lines, line)
		}
	}
	return cart, nil
}

func (f *fakeCartRepo) UpsertLine(_ context.Context, line domain.CartLine) (domain.CartLine, error) {
	f.mu.Lock()

	f.upsertCalls++
	call := f.upsertCalls
	if f.failUpsert {
		f.mu.Unlock()
		return domain.CartLine{}, fmt.Errorf("connection reset")
	}

	var stored domain.CartLine
	merged := false
	for id, existing := range f.lines {
		if existing.OwnerID == line.OwnerID && existing.MenuItemID == line.MenuItemID {
			existing.Quantity += line.Quantity
			existing.UpdatedAt = time.Now()
			f.lines[id] = existing
			stored = existing
			merged = true
			break
		}
	}
	if !merged {
		line.ID = uuid.New()
		line.CreatedAt = time.Now()
		line.UpdatedAt = line.CreatedAt
		f.lines[line.ID] = line
		stored = line
	}

	hook := f.onUpsertReturn
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return stored, nil
}

func (f *fakeCartRepo) UpdateQuantity(_ context.Context, ownerID string, lineID uuid.UUID, quantity int32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[lineID]
	if !ok || line.OwnerID != ownerID {
		return false, nil
	}

	line.Quantity = quantity
	f.lines[lineID] = line
	return true, nil
}

func (f *fakeCartRepo) DeleteLine(_ context.Context, ownerID string, lineID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[lineID]
	if !ok || line.OwnerID != ownerID {
		return false, nil
	}

	delete(f.lines, lineID)
	return true, nil
}

func (f *fakeCartRepo) Clear(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clearCalls++
	if f.failClear {
		return fmt.Errorf("connection reset")
	}

	for id, line := range f.lines {
		if line.OwnerID == ownerID {
			delete(f.lines, id)
		}
	}
	return nil
}

func (f *fakeCartRepo) lineCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.lines)
}

type fakeMenuRepo struct {
	items map[uuid.UUID]domain.MenuItem
}

func newFakeMenuRepo(items ...domain.MenuItem) *fakeMenuRepo {
	f := &fakeMenuRepo{items: make(map[uuid.UUID]domain.MenuItem)}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeMenuRepo) GetItem(_ context.Context, id uuid.UUID) (domain.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrMenuItemNotFound
	}
	return item, nil
}

func (f *fakeMenuRepo) ListItems(_ context.Context, _ domain.MenuFilter) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeMenuRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	mu sync.Mutex

	// insertErrs is consumed one per InsertOrder call; nil means success.
	insertErrs []error
	linesErr   error

	insertCalls      int
	insertLinesCalls int

	orders     []domain.Order
	orderLines []domain.OrderLine
}

func (f *fakeOrderRepo) InsertOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertCalls++
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return domain.Order{}, err
		}
	}

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) InsertOrderLines(_ context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertLinesCalls++
	if f.linesErr != nil {
		return nil, f.linesErr
	}

	stored := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		line.ID = uuid.New()
		line.CreatedAt = time.Now()
		stored[i] = line
	}
	f.orderLines = append(f.orderLines, stored...)
	return stored, nil
}

func (f *fakeOrderRepo) GetOrder(_ context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, order := range f.orders {
		if order.ID == orderID && order.OwnerID == ownerID {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, ownerID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []domain.Order
	for _, order := range f.orders {
		if order.OwnerID == ownerID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}
