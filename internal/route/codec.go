package route

import (
	"regexp"
	"strings"
)

// Kind identifies a route variant
type Kind string

const (
	KindHome     Kind = "home"
	KindAdmin    Kind = "admin"
	KindOrders   Kind = "orders"
	KindCheckout Kind = "checkout"
	KindProduct  Kind = "product"
	KindNotFound Kind = "not-found"
)

// Route is a decoded location fragment. ProductID is only set for KindProduct.
type Route struct {
	Kind      Kind   `json:"type"`
	ProductID string `json:"productId,omitempty"`
}

func Home() Route     { return Route{Kind: KindHome} }
func Admin() Route    { return Route{Kind: KindAdmin} }
func Orders() Route   { return Route{Kind: KindOrders} }
func Checkout() Route { return Route{Kind: KindCheckout} }
func NotFound() Route { return Route{Kind: KindNotFound} }

// Product returns the detail route for productID
func Product(productID string) Route {
	return Route{Kind: KindProduct, ProductID: productID}
}

var productPattern = regexp.MustCompile(`^/product/(.+)$`)

// Decode maps a fragment to a route. It never fails: anything unrecognised is NotFound.
func Decode(fragment string) Route {
	path := strings.TrimPrefix(fragment, "#")

	switch path {
	case "", "/":
		return Home()
	case "/admin":
		return Admin()
	case "/orders":
		return Orders()
	case "/checkout":
		return Checkout()
	}

	// the captured id is kept verbatim, no unescaping
	if m := productPattern.FindStringSubmatch(path); m != nil && m[1] != "" {
		return Product(m[1])
	}

	return NotFound()
}

// Encode builds the canonical fragment for r
func Encode(r Route) string {
	switch r.Kind {
	case KindHome:
		return "#/"
	case KindAdmin:
		return "#/admin"
	case KindOrders:
		return "#/orders"
	case KindCheckout:
		return "#/checkout"
	case KindProduct:
		return "#/product/" + r.ProductID
	case KindNotFound:
		return "#/not-found"
	default:
		return "#/"
	}
}

func (r Route) String() string {
	if r.Kind == KindProduct {
		return string(r.Kind) + ":" + r.ProductID
	}
	return string(r.Kind)
}
