package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64           `json:"order_id"`
	CustomerID      int64           `json:"customer_id"`
	OrderDate       time.Time       `json:"order_date"`
	DeliveryAddress string          `json:"delivery_address"`
	Status          Status          `json:"status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// OrderWithCustomer is an order row with the customer's display fields.
type OrderWithCustomer struct {
	Order
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// LineItem is one order_items row joined with the product name.
type LineItem struct {
	ID          int64  `json:"order_item_id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
}

type CustomerOrder struct {
	Order    Order      `json:"order"`
	Products []LineItem `json:"products"`
}

// Header is the client supplied part of a new order. order_date is set by
// the database.
type Header struct {
	CustomerID      int64               `json:"customer_id"`
	DeliveryAddress string              `json:"delivery_address"`
	Status          Status              `json:"status"`
	TotalPrice      decimal.NullDecimal `json:"total_price"`
}

type ItemInput struct {
	ProductID int64 `json:"product_id"`
}

// Created echoes the submitted header and items with the new order id.
type Created struct {
	OrderID  int64       `json:"order_id"`
	Order    Header      `json:"order"`
	Products []ItemInput `json:"products"`
}
