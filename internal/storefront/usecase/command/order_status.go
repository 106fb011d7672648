package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// UpdateOrderStatusCommand requests an order status transition
type UpdateOrderStatusCommand struct {
	OrderID string
	Status  string
}

// UpdateOrderStatusHandler handles order status changes
type UpdateOrderStatusHandler struct {
	base
}

// NewUpdateOrderStatusHandler creates a new update order status handler
func NewUpdateOrderStatusHandler(caller domain.Caller, client *query.Client) *UpdateOrderStatusHandler {
	return &UpdateOrderStatusHandler{base{caller: caller, client: client}}
}

// Handle executes the update order status command
func (h *UpdateOrderStatusHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
	if strings.TrimSpace(cmd.OrderID) == "" {
		return domain.NewValidationError("orderId", "order id is required")
	}
	status, err := domain.ParseOrderStatus(cmd.Status)
	if err != nil {
		return domain.NewValidationError("status", err.Error())
	}

	err = h.mutate(ctx, query.MutationUpdateOrderStatus, cmd.OrderID, func(ctx context.Context, b domain.Backend) error {
		return b.UpdateOrderStatus(ctx, cmd.OrderID, status)
	})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	logger.Info(ctx).
		Str("order_id", cmd.OrderID).
		Str("status", string(status)).
		Msg("Order status updated")
	return nil
}
