package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// AccountHandler serves reads about the signed-in caller
type AccountHandler struct {
	base
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(caller domain.Caller, client *query.Client) *AccountHandler {
	return &AccountHandler{base{caller: caller, client: client}}
}

// Profile returns the caller's profile; Data is nil when none was saved yet
func (h *AccountHandler) Profile(ctx context.Context) query.Result[*domain.UserProfile] {
	return fetchScoped(ctx, h.base, query.CurrentUserProfile, func(ctx context.Context, b domain.Backend) (*domain.UserProfile, error) {
		return b.GetCallerUserProfile(ctx)
	})
}

// UserProfile returns the profile of any principal
func (h *AccountHandler) UserProfile(ctx context.Context, principal string) query.Result[*domain.UserProfile] {
	return fetch(ctx, h.base, query.UserProfile.With(principal), func(ctx context.Context, b domain.Backend) (*domain.UserProfile, error) {
		return b.GetUserProfile(ctx, principal)
	})
}

// IsAdmin reports whether the caller is an admin. It never fails: an anonymous caller or a
// failed call yields false. The result is Loading only while the actor is being built.
func (h *AccountHandler) IsAdmin(ctx context.Context) query.Result[bool] {
	principal, ok := h.caller.Principal()
	if !ok {
		return query.Result[bool]{Status: query.StatusSuccess, Data: false}
	}

	res := fetch(ctx, h.base, query.IsAdmin.With(principal), func(ctx context.Context, b domain.Backend) (bool, error) {
		return b.IsCallerAdmin(ctx)
	})
	if res.Status == query.StatusError {
		logger.Warn(ctx).
			Err(res.Err).
			Str("principal", principal).
			Msg("Admin check failed, treating caller as non-admin")
		return query.Result[bool]{Status: query.StatusSuccess, Data: false}
	}
	return res
}

// Role returns the caller's role
func (h *AccountHandler) Role(ctx context.Context) query.Result[domain.UserRole] {
	principal, ok := h.caller.Principal()
	if !ok {
		return query.Result[domain.UserRole]{Status: query.StatusSuccess, Data: domain.RoleGuest}
	}
	return fetch(ctx, h.base, query.CallerRole.With(principal), func(ctx context.Context, b domain.Backend) (domain.UserRole, error) {
		return b.GetCallerUserRole(ctx)
	})
}

// Wishlist returns the product ids the caller saved
func (h *AccountHandler) Wishlist(ctx context.Context) query.Result[[]string] {
	return fetchScoped(ctx, h.base, query.Wishlist, func(ctx context.Context, b domain.Backend) ([]string, error) {
		return b.GetWishlist(ctx)
	})
}
