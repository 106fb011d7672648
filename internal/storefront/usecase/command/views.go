package command

import (
	"context"
	"sync"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/kafka"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// RecordViewHandler counts product detail views. Recording never fails from the caller's
// point of view: errors are logged and dropped.
type RecordViewHandler struct {
	base
	events EventPublisher

	wg sync.WaitGroup
}

// NewRecordViewHandler creates a new record view handler
func NewRecordViewHandler(caller domain.Caller, client *query.Client, events EventPublisher) *RecordViewHandler {
	return &RecordViewHandler{base: base{caller: caller, client: client}, events: events}
}

// Handle records the view in the background and returns immediately. Views of anonymous
// shoppers are not counted.
func (h *RecordViewHandler) Handle(ctx context.Context, productID string) {
	viewer, ok := h.caller.Principal()
	if productID == "" || !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		err := h.mutate(ctx, query.MutationIncrementViews, productID, func(ctx context.Context, b domain.Backend) error {
			return b.IncrementProductViews(ctx, productID)
		})
		if err != nil {
			logger.Debug(ctx).Err(err).Str("product_id", productID).Msg("Failed to record product view")
			return
		}

		event := kafka.ProductViewedEvent{ProductID: productID, ViewerID: viewer, Timestamp: timeNow()}
		if err := h.events.PublishProductViewed(ctx, event); err != nil {
			logger.Debug(ctx).Err(err).Str("product_id", productID).Msg("Failed to publish product viewed event")
		}
	}()
}

// Wait blocks until every background recording finished
func (h *RecordViewHandler) Wait() {
	h.wg.Wait()
}
