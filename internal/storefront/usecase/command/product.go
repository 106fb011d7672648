package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tair/furniture-storefront/internal/media"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// SaveProductCommand represents the command to create or edit a product.
// ID is ignored on create.
type SaveProductCommand struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Offer       string
	Category    string
	IsActive    bool
}

// UpdateMediaCommand replaces the images and videos of a product
type UpdateMediaCommand struct {
	ProductID string
	Images    []*media.Blob
	Videos    []*media.Blob
}

// ProductHandler handles catalog writes
type ProductHandler struct {
	base
}

// NewProductHandler creates a new product handler
func NewProductHandler(caller domain.Caller, client *query.Client) *ProductHandler {
	return &ProductHandler{base{caller: caller, client: client}}
}

func (cmd SaveProductCommand) input(id string) (domain.ProductInput, error) {
	name := strings.TrimSpace(cmd.Name)
	description := strings.TrimSpace(cmd.Description)
	category := strings.TrimSpace(cmd.Category)

	// Validation
	if name == "" {
		return domain.ProductInput{}, domain.NewValidationError("name", "product name is required")
	}
	if description == "" {
		return domain.ProductInput{}, domain.NewValidationError("description", "description is required")
	}
	if category == "" {
		return domain.ProductInput{}, domain.NewValidationError("category", "category is required")
	}
	if cmd.Price <= 0 {
		return domain.ProductInput{}, domain.NewValidationError("price", "price must be positive")
	}

	var offer *string
	if o := strings.TrimSpace(cmd.Offer); o != "" {
		offer = &o
	}

	return domain.ProductInput{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       cmd.Price,
		Offer:       offer,
		Category:    category,
		IsActive:    cmd.IsActive,
	}, nil
}

// Add creates a product and returns its id
func (h *ProductHandler) Add(ctx context.Context, cmd SaveProductCommand) (string, error) {
	in, err := cmd.input("prod-" + uuid.NewString())
	if err != nil {
		return "", err
	}

	err = h.mutate(ctx, query.MutationAddProduct, in.ID, func(ctx context.Context, b domain.Backend) error {
		return b.AddProduct(ctx, in)
	})
	if err != nil {
		return "", fmt.Errorf("failed to add product: %w", err)
	}

	logger.Info(ctx).Str("product_id", in.ID).Str("category", in.Category).Msg("Product created")
	return in.ID, nil
}

// Update edits an existing product
func (h *ProductHandler) Update(ctx context.Context, cmd SaveProductCommand) error {
	if strings.TrimSpace(cmd.ID) == "" {
		return domain.NewValidationError("id", "product id is required")
	}
	in, err := cmd.input(cmd.ID)
	if err != nil {
		return err
	}

	err = h.mutate(ctx, query.MutationUpdateProduct, in.ID, func(ctx context.Context, b domain.Backend) error {
		return b.UpdateProduct(ctx, in)
	})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// UpdateMedia replaces the product media, uploading pending blobs
func (h *ProductHandler) UpdateMedia(ctx context.Context, cmd UpdateMediaCommand) error {
	if strings.TrimSpace(cmd.ProductID) == "" {
		return domain.NewValidationError("productId", "product id is required")
	}

	err := h.mutate(ctx, query.MutationUpdateProductMedia, cmd.ProductID, func(ctx context.Context, b domain.Backend) error {
		return b.UpdateProductMedia(ctx, cmd.ProductID, cmd.Images, cmd.Videos)
	})
	if err != nil {
		return fmt.Errorf("failed to update product media: %w", err)
	}

	logger.Info(ctx).
		Str("product_id", cmd.ProductID).
		Int("images", len(cmd.Images)).
		Int("videos", len(cmd.Videos)).
		Msg("Product media updated")
	return nil
}

// SetFeatured replaces the featured product list
func (h *ProductHandler) SetFeatured(ctx context.Context, ids []string) error {
	err := h.mutate(ctx, query.MutationSetFeaturedProducts, "", func(ctx context.Context, b domain.Backend) error {
		return b.SetFeaturedProducts(ctx, ids)
	})
	if err != nil {
		return fmt.Errorf("failed to set featured products: %w", err)
	}
	return nil
}

// AppendMediaCommand adds new uploads after the media a product already has
type AppendMediaCommand struct {
	Product domain.Product
	Images  [][]byte
	Videos  [][]byte
	// OnProgress receives the average upload percentage over every new blob
	OnProgress media.ProgressFunc
}

// AppendMedia uploads new images and videos, keeping the existing ones first
func (h *ProductHandler) AppendMedia(ctx context.Context, cmd AppendMediaCommand) error {
	total := len(cmd.Images) + len(cmd.Videos)
	if total == 0 {
		return domain.NewValidationError("media", "no images or videos to upload")
	}

	tracker := newProgressTracker(total, cmd.OnProgress)
	wrap := func(raw [][]byte, offset int) []*media.Blob {
		out := make([]*media.Blob, 0, len(raw))
		for i, data := range raw {
			slot := offset + i
			out = append(out, media.FromBytes(data).WithUploadProgress(func(p int) { tracker.report(slot, p) }))
		}
		return out
	}

	images := append(append([]*media.Blob(nil), cmd.Product.Images...), wrap(cmd.Images, 0)...)
	videos := append(append([]*media.Blob(nil), cmd.Product.Videos...), wrap(cmd.Videos, len(cmd.Images))...)

	return h.UpdateMedia(ctx, UpdateMediaCommand{ProductID: cmd.Product.ID, Images: images, Videos: videos})
}

// progressTracker folds per-blob progress into one percentage
type progressTracker struct {
	mu    sync.Mutex
	slots []int
	fn    media.ProgressFunc
}

func newProgressTracker(n int, fn media.ProgressFunc) *progressTracker {
	return &progressTracker{slots: make([]int, n), fn: fn}
}

func (t *progressTracker) report(slot, percentage int) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	t.slots[slot] = percentage
	sum := 0
	for _, p := range t.slots {
		sum += p
	}
	avg := sum / len(t.slots)
	t.mu.Unlock()

	t.fn(avg)
}
