package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	PaymentMethodWeChat = "wechat"

	PaymentStatusPending = "pending"
)

// Order is the header record. TotalAmount and the attached lines are
// immutable once the order is created; status transitions belong to the
// fulfillment process.
type Order struct {
	ID                  uuid.UUID
	OwnerID             string
	OrderNumber         string
	Status              OrderStatus
	TotalAmount         Money
	DeliveryAddress     string
	Phone               string
	SpecialInstructions string
	PaymentMethod       string
	PaymentStatus       string

	Lines []OrderLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine carries the unit price snapshotted at placement time. Later
// menu price changes never touch it.
type OrderLine struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	MenuItemID          uuid.UUID
	Quantity            int32
	UnitPrice           Money
	TotalPrice          Money
	SpecialInstructions string

	CreatedAt time.Time
}
