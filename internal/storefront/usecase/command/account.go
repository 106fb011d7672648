package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// AccountHandler handles writes on behalf of the signed-in caller
type AccountHandler struct {
	base
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(caller domain.Caller, client *query.Client) *AccountHandler {
	return &AccountHandler{base{caller: caller, client: client}}
}

// SaveProfile stores the caller's profile. Blank optional fields are sent as absent.
func (h *AccountHandler) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	if _, err := h.requirePrincipal(); err != nil {
		return err
	}

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	profile.Address = trimmedOrNil(profile.Address)
	profile.Phone = trimmedOrNil(profile.Phone)

	err := h.mutate(ctx, query.MutationSaveProfile, "", func(ctx context.Context, b domain.Backend) error {
		return b.SaveCallerUserProfile(ctx, profile)
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// AddToWishlist saves a product for the caller
func (h *AccountHandler) AddToWishlist(ctx context.Context, productID string) error {
	if _, err := h.requirePrincipal(); err != nil {
		return err
	}
	err := h.mutate(ctx, query.MutationAddToWishlist, productID, func(ctx context.Context, b domain.Backend) error {
		return b.AddToWishlist(ctx, productID)
	})
	if err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

// RemoveFromWishlist drops a saved product
func (h *AccountHandler) RemoveFromWishlist(ctx context.Context, productID string) error {
	if _, err := h.requirePrincipal(); err != nil {
		return err
	}
	err := h.mutate(ctx, query.MutationRemoveFromWishlist, productID, func(ctx context.Context, b domain.Backend) error {
		return b.RemoveFromWishlist(ctx, productID)
	})
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

// AssignRole changes the role of principal (admin)
func (h *AccountHandler) AssignRole(ctx context.Context, principal string, role domain.UserRole) error {
	if strings.TrimSpace(principal) == "" {
		return domain.NewValidationError("principal", "principal is required")
	}
	switch role {
	case domain.RoleAdmin, domain.RoleUser, domain.RoleGuest:
	default:
		return domain.NewValidationError("role", fmt.Sprintf("invalid role: %q", role))
	}

	err := h.mutate(ctx, query.MutationAssignRole, principal, func(ctx context.Context, b domain.Backend) error {
		return b.AssignCallerUserRole(ctx, principal, role)
	})
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
