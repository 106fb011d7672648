package domain

import (
	"strings"
	"time"

	"github.com/tair/furniture-storefront/internal/media"
)

// DefaultProductImage is shown when a product has no images yet
const DefaultProductImage = "/assets/generated/sample-sofa.dim_800x600.jpg"

// UncategorizedLabel is the normalized category of products without one
const UncategorizedLabel = "uncategorized"

// Product is a catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       int64         `json:"price"`
	Offer       *string       `json:"offer,omitempty"`
	Category    string        `json:"category"`
	IsActive    bool          `json:"isActive"`
	Images      []*media.Blob `json:"images"`
	Videos      []*media.Blob `json:"videos"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PrimaryImageURL returns the first image URL or the default placeholder
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) > 0 {
		if u := p.Images[0].DirectURL(); u != "" {
			return u
		}
	}
	return DefaultProductImage
}

// InCategory reports whether the product belongs to category, comparing normalized names
func (p *Product) InCategory(category string) bool {
	return NormalizeCategory(p.Category) == NormalizeCategory(category)
}

// NormalizeCategory trims and lowercases a category name; blank names are uncategorized
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return UncategorizedLabel
	}
	return c
}

// FilterByCategory keeps the products in category. An empty category keeps everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// ProductStats holds engagement counters for one product
type ProductStats struct {
	ID        string `json:"id"`
	Views     int64  `json:"views"`
	Wishlists int64  `json:"wishlists"`
	Sales     int64  `json:"sales"`
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Offer       *string `json:"offer,omitempty"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"isActive"`
}
