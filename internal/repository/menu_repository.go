package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jadegarden/storefront/internal/domain"
)

const menuItemColumns = `id, category_id, name_en, name_zh, description_en, description_zh,
	price_amount, price_currency, image_url, is_available, is_featured,
	prep_minutes, calories, ingredients_en, ingredients_zh, allergens, sort_order,
	created_at, updated_at`

type MenuRepository struct {
	pool *pgxpool.Pool
}

func NewMenu(pool *pgxpool.Pool) (*MenuRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &MenuRepository{pool: pool}, nil
}

func (r *MenuRepository) GetItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)

	item, err := scanMenuItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MenuItem{}, domain.ErrMenuItemNotFound
		}
		return domain.MenuItem{}, fmt.Errorf("scanMenuItem: %w", err)
	}

	return item, nil
}

func (r *MenuRepository) ListItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE TRUE`
	var args []any

	if filter.CategoryID != uuid.Nil {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.AvailableOnly {
		query += " AND is_available"
	}
	if filter.FeaturedOnly {
		query += " AND is_featured"
	}
	query += " ORDER BY sort_order, name_en"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanMenuItem: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

func (r *MenuRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name_en, name_zh, description_en, description_zh, sort_order, is_active, created_at
		 FROM categories
		 WHERE is_active
		 ORDER BY sort_order, name_en`)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		err := rows.Scan(&c.ID, &c.NameEN, &c.NameZH, &c.DescriptionEN, &c.DescriptionZH,
			&c.SortOrder, &c.IsActive, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return categories, nil
}

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var (
		item          domain.MenuItem
		priceAmount   decimal.Decimal
		priceCurrency string
	)

	err := row.Scan(&item.ID, &item.CategoryID, &item.NameEN, &item.NameZH,
		&item.DescriptionEN, &item.DescriptionZH,
		&priceAmount, &priceCurrency, &item.ImageURL, &item.IsAvailable, &item.IsFeatured,
		&item.PrepMinutes, &item.Calories, &item.IngredientsEN, &item.IngredientsZH,
		&item.Allergens, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.MenuItem{}, err
	}

	item.Price, err = domain.NewMoney(priceAmount, priceCurrency)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("domain.NewMoney: %w", err)
	}

	return item, nil
}
