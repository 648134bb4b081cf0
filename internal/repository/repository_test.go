package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"

	"github.com/jadegarden/storefront/internal/domain"
)

var (
	currencyComparer = cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})
	decimalComparer = cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})
)

func assertMenuItem(t *testing.T, expected, actual domain.MenuItem) {
	t.Helper()

	// Timestamps are set by the database; the seeded copy and the joined
	// read see different precisions.
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.MenuItem{}, "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
		currencyComparer,
		decimalComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}

func assertOrderLines(t *testing.T, expected, actual []domain.OrderLine) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.OrderLine{}, "CreatedAt"),
		cmpopts.EquateEmpty(),
		currencyComparer,
		decimalComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../../migrations/01_menu.up.sql",
			"../../migrations/02_cart_lines.up.sql",
			"../../migrations/03_orders.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

// seedMenuItem inserts a category and a menu item directly, bypassing the
// read-only menu repository.
func seedMenuItem(t *testing.T, pool *pgxpool.Pool, price string) domain.MenuItem {
	t.Helper()
	ctx := t.Context()

	var categoryID uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO categories (name_en, name_zh) VALUES ($1, $2) RETURNING id`,
		gofakeit.ProductCategory(), gofakeit.ProductCategory(),
	).Scan(&categoryID)
	require.NoError(t, err)

	item := domain.MenuItem{
		CategoryID:  categoryID,
		NameEN:      gofakeit.Dinner(),
		NameZH:      gofakeit.Dinner(),
		IsAvailable: true,
	}
	item.Price, err = domain.NewMoney(decimal.RequireFromString(price), "CNY")
	require.NoError(t, err)

	err = pool.QueryRow(ctx,
		`INSERT INTO menu_items (category_id, name_en, name_zh, price_amount, price_currency)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		item.CategoryID, item.NameEN, item.NameZH, item.Price.Amount, item.Price.Currency.String(),
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	require.NoError(t, err)

	return item
}
