package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/jadegarden/storefront/internal/domain"
	"github.com/jadegarden/storefront/internal/pricing"
	"github.com/jadegarden/storefront/internal/service"
)

type moneyView struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func money(m domain.Money) moneyView {
	return moneyView{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
	}
}

type categoryResponse struct {
	ID            uuid.UUID `json:"id"`
	NameEN        string    `json:"name_en"`
	NameZH        string    `json:"name_zh"`
	DescriptionEN string    `json:"description_en,omitempty"`
	DescriptionZH string    `json:"description_zh,omitempty"`
	SortOrder     int32     `json:"sort_order"`
}

func categoryViews(categories []domain.Category) []categoryResponse {
	views := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryResponse{
			ID:            c.ID,
			NameEN:        c.NameEN,
			NameZH:        c.NameZH,
			DescriptionEN: c.DescriptionEN,
			DescriptionZH: c.DescriptionZH,
			SortOrder:     c.SortOrder,
		})
	}
	return views
}

type menuItemResponse struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    uuid.UUID `json:"category_id"`
	NameEN        string    `json:"name_en"`
	NameZH        string    `json:"name_zh"`
	DescriptionEN string    `json:"description_en,omitempty"`
	DescriptionZH string    `json:"description_zh,omitempty"`
	Price         moneyView `json:"price"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsAvailable   bool      `json:"is_available"`
	IsFeatured    bool      `json:"is_featured"`
	PrepMinutes   int32     `json:"prep_minutes,omitempty"`
	Calories      int32     `json:"calories,omitempty"`
	IngredientsEN []string  `json:"ingredients_en,omitempty"`
	IngredientsZH []string  `json:"ingredients_zh,omitempty"`
	Allergens     []string  `json:"allergens,omitempty"`
}

func menuItemView(item domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:            item.ID,
		CategoryID:    item.CategoryID,
		NameEN:        item.NameEN,
		NameZH:        item.NameZH,
		DescriptionEN: item.DescriptionEN,
		DescriptionZH: item.DescriptionZH,
		Price:         money(item.Price),
		ImageURL:      item.ImageURL,
		IsAvailable:   item.IsAvailable,
		IsFeatured:    item.IsFeatured,
		PrepMinutes:   item.PrepMinutes,
		Calories:      item.Calories,
		IngredientsEN: item.IngredientsEN,
		IngredientsZH: item.IngredientsZH,
		Allergens:     item.Allergens,
	}
}

func menuItemViews(items []domain.MenuItem) []menuItemResponse {
	views := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		views = append(views, menuItemView(item))
	}
	return views
}

type cartLineResponse struct {
	ID                  uuid.UUID        `json:"id"`
	MenuItemID          uuid.UUID        `json:"menu_item_id"`
	Quantity            int32            `json:"quantity"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
	Item                menuItemResponse `json:"item"`
	LineTotal           moneyView        `json:"line_total"`
}

func cartLineView(line domain.CartLine, calc pricing.Calculator) cartLineResponse {
	return cartLineResponse{
		ID:                  line.ID,
		MenuItemID:          line.MenuItemID,
		Quantity:            line.Quantity,
		SpecialInstructions: line.SpecialInstructions,
		Item:                menuItemView(line.Item),
		LineTotal:           money(calc.LineTotal(line)),
	}
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int32              `json:"item_count"`
	Total     moneyView          `json:"total"`
}

func cartView(store *service.CartStore, calc pricing.Calculator) cartResponse {
	lines := store.Lines()

	views := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		views = append(views, cartLineView(line, calc))
	}

	return cartResponse{
		Lines:     views,
		ItemCount: store.ItemCount(),
		Total:     money(store.TotalPrice()),
	}
}

type orderLineResponse struct {
	ID                  uuid.UUID `json:"id"`
	MenuItemID          uuid.UUID `json:"menu_item_id"`
	Quantity            int32     `json:"quantity"`
	UnitPrice           moneyView `json:"unit_price"`
	TotalPrice          moneyView `json:"total_price"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
}

type orderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OrderNumber         string              `json:"order_number"`
	Status              domain.OrderStatus  `json:"status"`
	TotalAmount         moneyView           `json:"total_amount"`
	DeliveryAddress     string              `json:"delivery_address"`
	Phone               string              `json:"phone"`
	SpecialInstructions string              `json:"special_instructions,omitempty"`
	PaymentMethod       string              `json:"payment_method"`
	PaymentStatus       string              `json:"payment_status"`
	Lines               []orderLineResponse `json:"lines"`
	CreatedAt           time.Time           `json:"created_at"`
}

func orderView(order domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ID:                  line.ID,
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			UnitPrice:           money(line.UnitPrice),
			TotalPrice:          money(line.TotalPrice),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	return orderResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		Status:              order.Status,
		TotalAmount:         money(order.TotalAmount),
		DeliveryAddress:     order.DeliveryAddress,
		Phone:               order.Phone,
		SpecialInstructions: order.SpecialInstructions,
		PaymentMethod:       order.PaymentMethod,
		PaymentStatus:       order.PaymentStatus,
		Lines:               lines,
		CreatedAt:           order.CreatedAt,
	}
}

func orderViews(orders []domain.Order) []orderResponse {
	views := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView(order))
	}
	return views
}
