package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jadegarden/storefront/internal/domain"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (*CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &CartRepository{pool: pool}, nil
}

func (r *CartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT cl.id, cl.user_id, cl.menu_item_id, cl.quantity, cl.special_instructions,
			cl.created_at, cl.updated_at,
			mi.id, mi.category_id, mi.name_en, mi.name_zh, mi.description_en, mi.description_zh,
			mi.price_amount, mi.price_currency, mi.image_url, mi.is_available, mi.is_featured,
			mi.prep_minutes, mi.calories, mi.ingredients_en, mi.ingredients_zh, mi.allergens,
			mi.sort_order, mi.created_at, mi.updated_at
		 FROM cart_lines cl
		 JOIN menu_items mi ON mi.id = cl.menu_item_id
		 WHERE cl.user_id = $1
		 ORDER BY cl.created_at`, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var (
			line          domain.CartLine
			priceAmount   decimal.Decimal
			priceCurrency string
		)

		err := rows.Scan(&line.ID, &line.OwnerID, &line.MenuItemID, &line.Quantity,
			&line.SpecialInstructions, &line.CreatedAt, &line.UpdatedAt,
			&line.Item.ID, &line.Item.CategoryID, &line.Item.NameEN, &line.Item.NameZH,
			&line.Item.DescriptionEN, &line.Item.DescriptionZH,
			&priceAmount, &priceCurrency, &line.Item.ImageURL,
			&line.Item.IsAvailable, &line.Item.IsFeatured,
			&line.Item.PrepMinutes, &line.Item.Calories,
			&line.Item.IngredientsEN, &line.Item.IngredientsZH, &line.Item.Allergens,
			&line.Item.SortOrder, &line.Item.CreatedAt, &line.Item.UpdatedAt)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("rows.Scan: %w", err)
		}

		line.Item.Price, err = domain.NewMoney(priceAmount, priceCurrency)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("domain.NewMoney: %w", err)
		}

		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Lines:   lines,
	}, nil
}

// UpsertLine merges quantities server-side on conflict, so two concurrent
// adds for the same item settle to a single line with the summed quantity.
// Existing special instructions are kept on merge.
func (r *CartRepository) UpsertLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	if line.OwnerID == "" {
		return domain.CartLine{}, fmt.Errorf("ownerID is empty")
	}
	if line.Quantity < 1 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	stored := line
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_lines (user_id, menu_item_id, quantity, special_instructions)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, menu_item_id)
		 DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
		 RETURNING id, quantity, special_instructions, created_at, updated_at`,
		line.OwnerID, line.MenuItemID, line.Quantity, line.SpecialInstructions,
	).Scan(&stored.ID, &stored.Quantity, &stored.SpecialInstructions, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return stored, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, ownerID string, lineID uuid.UUID, quantity int32) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if quantity < 1 {
		return false, domain.ErrInvalidQuantity
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity = $3, updated_at = now()
		 WHERE id = $2 AND user_id = $1`,
		ownerID, lineID, quantity)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *CartRepository) DeleteLine(ctx context.Context, ownerID string, lineID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE id = $2 AND user_id = $1`, ownerID, lineID)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *CartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
