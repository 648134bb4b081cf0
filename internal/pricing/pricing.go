// Package pricing derives line and cart totals from cart lines. All
// functions are pure; rounding is half-up to 2 decimal places, applied once
// at the end of a sum rather than per accumulated line.
package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jadegarden/storefront/internal/domain"
)

// DefaultCurrency applies to totals over an empty cart, where no line
// carries a currency to inherit.
var DefaultCurrency = currency.MustParseISO("CNY")

type Calculator struct {
	// DeliveryFee is added on top of the cart total at checkout and is
	// currently always waived. It is a header-level charge: when set
	// non-zero, an order's total amount exceeds the sum of its line totals
	// by exactly this fee.
	DeliveryFee decimal.Decimal
}

func New() Calculator {
	return Calculator{DeliveryFee: decimal.Zero}
}

// LineTotal is unit price times quantity, rounded to 2 decimals.
func (c Calculator) LineTotal(line domain.CartLine) domain.Money {
	total := line.Item.Price.MulQty(line.Quantity)
	total.Amount = round2(total.Amount)
	return total
}

// CartTotal sums the exact per-line products and rounds the sum once.
func (c Calculator) CartTotal(lines []domain.CartLine) domain.Money {
	sum := decimal.Zero
	unit := DefaultCurrency

	for i, line := range lines {
		if i == 0 {
			unit = line.Item.Price.Currency
		}
		sum = sum.Add(line.Item.Price.MulQty(line.Quantity).Amount)
	}

	return domain.Money{Amount: round2(sum), Currency: unit}
}

// OrderTotal is the cart total plus the delivery fee.
func (c Calculator) OrderTotal(lines []domain.CartLine) domain.Money {
	total := c.CartTotal(lines)
	total.Amount = round2(total.Amount.Add(c.DeliveryFee))
	return total
}

// round2 rounds half away from zero, which for non-negative prices is
// standard currency half-up rounding.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
