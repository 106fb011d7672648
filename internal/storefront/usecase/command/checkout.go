package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tair/furniture-storefront/internal/cart"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/kafka"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// CheckoutCommand represents the command to place an order for the cart
type CheckoutCommand struct {
	Name    string
	Phone   string
	Address string
	Cart    cart.Cart
}

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	base
	events EventPublisher
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(caller domain.Caller, client *query.Client, events EventPublisher) *CheckoutHandler {
	return &CheckoutHandler{base: base{caller: caller, client: client}, events: events}
}

// Handle validates the command and creates the order. It returns the new order id.
// Clearing the cart after success is left to the caller.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (string, error) {
	principal, err := h.requirePrincipal()
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(cmd.Name)
	phone := strings.TrimSpace(cmd.Phone)
	address := strings.TrimSpace(cmd.Address)

	// Validation
	if name == "" {
		return "", domain.NewValidationError("name", "name is required")
	}
	if phone == "" {
		return "", domain.NewValidationError("phone", "phone is required")
	}
	if address == "" {
		return "", domain.NewValidationError("address", "address is required")
	}
	if cmd.Cart.IsEmpty() {
		return "", domain.ErrEmptyCart
	}

	lines := cmd.Cart.Lines()
	items := make([]domain.CartItem, 0, len(lines))
	eventItems := make([]kafka.OrderPlacedItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.CartItem{ProductID: l.ProductID, Quantity: int64(l.Quantity)})
		eventItems = append(eventItems, kafka.OrderPlacedItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}

	order := domain.NewOrder{
		ID:      "order-" + uuid.NewString(),
		Name:    name,
		Phone:   phone,
		Address: address,
		Cart:    items,
	}

	err = h.mutate(ctx, query.MutationCreateOrder, order.ID, func(ctx context.Context, b domain.Backend) error {
		return b.CreateOrder(ctx, order)
	})
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}

	logger.Info(ctx).
		Str("order_id", order.ID).
		Str("customer", principal).
		Int("items", cmd.Cart.ItemCount()).
		Int64("subtotal", cmd.Cart.Subtotal()).
		Msg("Order created")

	event := kafka.OrderPlacedEvent{
		OrderID:    order.ID,
		CustomerID: principal,
		Items:      eventItems,
		ItemCount:  cmd.Cart.ItemCount(),
		Subtotal:   cmd.Cart.Subtotal(),
		Timestamp:  timeNow(),
	}
	if err := h.events.PublishOrderPlaced(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn(ctx).Err(err).Str("order_id", order.ID).Msg("Failed to publish order placed event")
	}

	return order.ID, nil
}
