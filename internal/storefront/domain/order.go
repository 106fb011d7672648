package domain

import (
	"fmt"
	"time"
)

// OrderStatus is decided by the backend; the client only requests transitions
type OrderStatus string

// Order statuses
const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus accepts only the four known statuses
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderProcessing, OrderDelivered, OrderCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("invalid order status: %q", s)
	}
}

// IsCompleted reports whether no further transitions are expected
func (s OrderStatus) IsCompleted() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// OrderItem is an order line with the unit price at the time of ordering
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order is a placed order
type Order struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Items        []OrderItem `json:"items"`
	TotalPrice   int64       `json:"totalPrice"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// CartItem is the cart line shape sent with createOrder
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// NewOrder carries the createOrder request
type NewOrder struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Phone   string     `json:"phone"`
	Address string     `json:"address"`
	Cart    []CartItem `json:"cart"`
}
