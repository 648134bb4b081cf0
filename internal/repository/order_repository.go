package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jadegarden/storefront/internal/domain"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit,
// used to tell an order-number collision apart from other insert failures.
const pgUniqueViolation = "23505"

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) (*OrderRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &OrderRepository{pool: pool}, nil
}

// InsertOrder persists the header only. Lines go through InsertOrderLines;
// the two writes are intentionally separate single-row operations.
func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.OwnerID == "" {
		return domain.Order{}, fmt.Errorf("ownerID is empty")
	}

	stored := order
	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (user_id, order_number, status, total_amount, total_currency,
			delivery_address, phone, special_instructions, payment_method, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		order.OwnerID, order.OrderNumber, order.Status,
		order.TotalAmount.Amount, order.TotalAmount.Currency.String(),
		order.DeliveryAddress, order.Phone, order.SpecialInstructions,
		order.PaymentMethod, order.PaymentStatus,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.Order{}, domain.ErrOrderNumberConflict
		}
		return domain.Order{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return stored, nil
}

func (r *OrderRepository) InsertOrderLines(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("lines are empty")
	}

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(
			`INSERT INTO order_items (order_id, menu_item_id, quantity,
				unit_price_amount, unit_price_currency,
				total_price_amount, total_price_currency, special_instructions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			line.OrderID, line.MenuItemID, line.Quantity,
			line.UnitPrice.Amount, line.UnitPrice.Currency.String(),
			line.TotalPrice.Amount, line.TotalPrice.Currency.String(),
			line.SpecialInstructions)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	stored := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		stored[i] = line
		err := results.QueryRow().Scan(&stored[i].ID, &stored[i].CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("results.QueryRow[%d]: %w", i, err)
		}
	}

	return stored, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error) {
	if ownerID == "" {
		return domain.Order{}, fmt.Errorf("ownerID is empty")
	}

	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, order_number, status, total_amount, total_currency,
			delivery_address, phone, special_instructions, payment_method, payment_status,
			created_at, updated_at
		 FROM orders
		 WHERE id = $2 AND user_id = $1`, ownerID, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scanOrder: %w", err)
	}

	order.Lines, err = r.orderLines(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orderLines: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, order_number, status, total_amount, total_currency,
			delivery_address, phone, special_instructions, payment_method, payment_status,
			created_at, updated_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	for i := range orders {
		orders[i].Lines, err = r.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("orderLines: %w", err)
		}
	}

	return orders, nil
}

func (r *OrderRepository) orderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, menu_item_id, quantity,
			unit_price_amount, unit_price_currency,
			total_price_amount, total_price_currency, special_instructions, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			line                        domain.OrderLine
			unitAmount, totalAmount     decimal.Decimal
			unitCurrency, totalCurrency string
		)

		err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Quantity,
			&unitAmount, &unitCurrency, &totalAmount, &totalCurrency,
			&line.SpecialInstructions, &line.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		line.UnitPrice, err = domain.NewMoney(unitAmount, unitCurrency)
		if err != nil {
			return nil, fmt.Errorf("domain.NewMoney: %w", err)
		}
		line.TotalPrice, err = domain.NewMoney(totalAmount, totalCurrency)
		if err != nil {
			return nil, fmt.Errorf("domain.NewMoney: %w", err)
		}

		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lines, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order         domain.Order
		totalAmount   decimal.Decimal
		totalCurrency string
	)

	err := row.Scan(&order.ID, &order.OwnerID, &order.OrderNumber, &order.Status,
		&totalAmount, &totalCurrency, &order.DeliveryAddress, &order.Phone,
		&order.SpecialInstructions, &order.PaymentMethod, &order.PaymentStatus,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	order.TotalAmount, err = domain.NewMoney(totalAmount, totalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.NewMoney: %w", err)
	}

	return order, nil
}
