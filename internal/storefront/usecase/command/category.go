package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// CategoryHandler handles category writes
type CategoryHandler struct {
	base
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(caller domain.Caller, client *query.Client) *CategoryHandler {
	return &CategoryHandler{base{caller: caller, client: client}}
}

// Add creates a category
func (h *CategoryHandler) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name", "category name is required")
	}

	err := h.mutate(ctx, query.MutationAddCategory, name, func(ctx context.Context, b domain.Backend) error {
		return b.AddCategory(ctx, name)
	})
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	return nil
}

// Delete removes a category
func (h *CategoryHandler) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name", "category name is required")
	}

	err := h.mutate(ctx, query.MutationDeleteCategory, name, func(ctx context.Context, b domain.Backend) error {
		return b.DeleteCategory(ctx, name)
	})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
