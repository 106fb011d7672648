// Package view picks the top-level page for the current route and session state.
package view

import (
	"github.com/tair/furniture-storefront/internal/cart"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/route"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// PageKind names a top-level page
type PageKind string

const (
	PageHome               PageKind = "home"
	PageProductDetail      PageKind = "product-detail"
	PageCheckout           PageKind = "checkout"
	PageMyOrders           PageKind = "my-orders"
	PageAdmin              PageKind = "admin"
	PageAdminAccessBlocked PageKind = "admin-access-blocked"
	PageNotFound           PageKind = "not-found"
	// PageBlank renders nothing while admin access is being checked
	PageBlank PageKind = "blank"
)

// Page is the selected page with the data it needs from the session
type Page struct {
	Kind          PageKind   `json:"kind"`
	ProductID     string     `json:"productId,omitempty"`
	Cart          *cart.Cart `json:"cart,omitempty"`
	Authenticated bool       `json:"authenticated,omitempty"`
}

// State is the session state page selection depends on
type State struct {
	Cart          cart.Cart
	Authenticated bool
	IsAdmin       query.Result[bool]
	Profile       query.Result[*domain.UserProfile]
}

// Select chooses exactly one page for r
func Select(r route.Route, s State) Page {
	switch r.Kind {
	case route.KindHome:
		return Page{Kind: PageHome}
	case route.KindProduct:
		return Page{Kind: PageProductDetail, ProductID: r.ProductID}
	case route.KindCheckout:
		c := s.Cart
		return Page{Kind: PageCheckout, Cart: &c}
	case route.KindOrders:
		return Page{Kind: PageMyOrders}
	case route.KindAdmin:
		return selectAdmin(s)
	default:
		return Page{Kind: PageNotFound}
	}
}

func selectAdmin(s State) Page {
	if !s.Authenticated {
		return Page{Kind: PageAdminAccessBlocked}
	}
	if s.IsAdmin.Loading() {
		return Page{Kind: PageBlank}
	}
	if s.IsAdmin.Ready() && s.IsAdmin.Data {
		return Page{Kind: PageAdmin}
	}
	return Page{Kind: PageAdminAccessBlocked, Authenticated: true}
}

// ShowProfileSetup reports whether a signed-in shopper still has to create a profile
func ShowProfileSetup(s State) bool {
	return s.Authenticated && s.Profile.Ready() && s.Profile.Data == nil
}
