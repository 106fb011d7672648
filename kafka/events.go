package kafka

import "time"

// OrderPlacedEvent is emitted after the backend accepted a checkout
type OrderPlacedEvent struct {
	EventID    string            `json:"event_id"`
	EventType  string            `json:"event_type"`
	OrderID    string            `json:"order_id"`
	CustomerID string            `json:"customer_id"`
	Items      []OrderPlacedItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	Subtotal   int64             `json:"subtotal"`
	Timestamp  time.Time         `json:"timestamp"`
}

// OrderPlacedItem is one cart line of a placed order
type OrderPlacedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ProductViewedEvent is emitted when a product detail page is opened
type ProductViewedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	ViewerID  string    `json:"viewer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderPlaced   = "order.placed"
	EventTypeProductViewed = "product.viewed"
)

// Kafka topics
const (
	TopicOrderPlaced   = "storefront-order-placed"
	TopicProductViewed = "storefront-product-viewed"
)
