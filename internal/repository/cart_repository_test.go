package repository_test

import (
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jadegarden/storefront/internal/domain"
	"github.com/jadegarden/storefront/internal/repository"
)

type cartRepositorySuite struct {
	suite.Suite

	repo *repository.CartRepository
	pool *pgxpool.Pool
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo, err = repository.NewCart(suite.pool)
	suite.NoError(err)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *cartRepositorySuite) TestUpsertLine() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	item := seedMenuItem(t, suite.pool, "38.00")
	ownerID := gofakeit.UUID()

	first, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:             ownerID,
		MenuItemID:          item.ID,
		Quantity:            1,
		SpecialInstructions: "no peanuts",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.Quantity)
	assert.False(t, first.CreatedAt.IsZero())

	// Same item again: quantities merge into the existing line and the
	// original instructions survive.
	second, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:    ownerID,
		MenuItemID: item.ID,
		Quantity:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(3), second.Quantity)
	assert.Equal(t, "no peanuts", second.SpecialInstructions)

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
}

func (suite *cartRepositorySuite) TestUpsertLine_ConcurrentAdds() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	item := seedMenuItem(t, suite.pool, "38.00")
	ownerID := gofakeit.UUID()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repo.UpsertLine(ctx, domain.CartLine{
				OwnerID:    ownerID,
				MenuItemID: item.ID,
				Quantity:   1,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(10), cart.Lines[0].Quantity)
}

func (suite *cartRepositorySuite) TestUpsertLine_Validation() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.repo.UpsertLine(ctx, domain.CartLine{MenuItemID: uuid.New(), Quantity: 1})
	require.EqualError(t, err, "ownerID is empty")

	_, err = suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:    gofakeit.UUID(),
		MenuItemID: uuid.New(),
		Quantity:   0,
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func (suite *cartRepositorySuite) TestUpdateQuantity() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	item := seedMenuItem(t, suite.pool, "38.00")
	ownerID := gofakeit.UUID()

	line, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:    ownerID,
		MenuItemID: item.ID,
		Quantity:   2,
	})
	require.NoError(t, err)

	ok, err := suite.repo.UpdateQuantity(ctx, ownerID, line.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(5), cart.Lines[0].Quantity)

	// A different owner cannot touch the line.
	ok, err = suite.repo.UpdateQuantity(ctx, gofakeit.UUID(), line.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = suite.repo.UpdateQuantity(ctx, ownerID, line.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func (suite *cartRepositorySuite) TestDeleteLine() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	item := seedMenuItem(t, suite.pool, "38.00")
	ownerID := gofakeit.UUID()

	line, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:    ownerID,
		MenuItemID: item.ID,
		Quantity:   1,
	})
	require.NoError(t, err)

	deleted, err := suite.repo.DeleteLine(ctx, ownerID, line.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete reports not found without erroring.
	deleted, err = suite.repo.DeleteLine(ctx, ownerID, line.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func (suite *cartRepositorySuite) TestClear() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	otherOwner := gofakeit.UUID()

	for _, price := range []string{"38.00", "12.50"} {
		item := seedMenuItem(t, suite.pool, price)
		_, err := suite.repo.UpsertLine(ctx, domain.CartLine{
			OwnerID:    ownerID,
			MenuItemID: item.ID,
			Quantity:   1,
		})
		require.NoError(t, err)
	}

	keeper := seedMenuItem(t, suite.pool, "20.00")
	_, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:    otherOwner,
		MenuItemID: keeper.ID,
		Quantity:   1,
	})
	require.NoError(t, err)

	require.NoError(t, suite.repo.Clear(ctx, ownerID))

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// Other owners' carts are untouched, and clearing an empty cart is fine.
	otherCart, err := suite.repo.GetCart(ctx, otherOwner)
	require.NoError(t, err)
	assert.Len(t, otherCart.Lines, 1)

	require.NoError(t, suite.repo.Clear(ctx, ownerID))
}

func (suite *cartRepositorySuite) TestGetCart() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()

	item := seedMenuItem(t, suite.pool, "38.00")
	_, err := suite.repo.UpsertLine(ctx, domain.CartLine{
		OwnerID:             ownerID,
		MenuItemID:          item.ID,
		Quantity:            2,
		SpecialInstructions: "extra spicy",
	})
	require.NoError(t, err)

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, cart.OwnerID)
	require.Len(t, cart.Lines, 1)

	line := cart.Lines[0]
	assert.Equal(t, item.ID, line.MenuItemID)
	assert.Equal(t, int32(2), line.Quantity)
	assert.Equal(t, "extra spicy", line.SpecialInstructions)

	// The joined menu item carries the display price.
	assertMenuItem(t, item, line.Item)
	assert.Equal(t, "CNY", line.Item.Price.Currency.String())

	_, err = suite.repo.GetCart(ctx, "")
	require.EqualError(t, err, "ownerID is empty")
}

func (suite *cartRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE cart_lines, menu_items, categories CASCADE")
	suite.NoError(err)
}
