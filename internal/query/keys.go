package query

import "strings"

// Key addresses one cached query. Segments are joined with ':' when stored.
type Key []string

var segmentEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

func (k Key) String() string {
	return strings.Join(k, ":")
}

// Encode is the storage form of k: segments joined with ':' after escaping ':' and '\'
// inside each one. Distinct keys never share an encoding.
func (k Key) Encode() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = segmentEscaper.Replace(seg)
	}
	return strings.Join(parts, ":")
}

// Name is the query name used for metrics and spans
func (k Key) Name() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// With appends a segment to the key
func (k Key) With(segment string) Key {
	out := make(Key, 0, len(k)+1)
	out = append(out, k...)
	return append(out, segment)
}

// Covers reports whether other equals k or lies under it
func (k Key) Covers(other Key) bool {
	if len(other) < len(k) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Standard keys
var (
	ActiveProducts     = Key{"activeProducts"}
	AllProducts        = Key{"allProducts"}
	FeaturedProducts   = Key{"featuredProducts"}
	ProductsByCategory = Key{"productsByCategory"}
	Categories         = Key{"categories"}
	Product            = Key{"product"}
	ProductStats       = Key{"productStats"}
	AllProductStats    = Key{"allProductStats"}

	MyOrders        = Key{"myOrders"}
	AllOrders       = Key{"allOrders"}
	ActiveOrders    = Key{"activeOrders"}
	CompletedOrders = Key{"completedOrders"}
	Order           = Key{"order"}

	CurrentUserProfile = Key{"currentUserProfile"}
	UserProfile        = Key{"userProfile"}
	IsAdmin            = Key{"isAdmin"}
	CallerRole         = Key{"callerRole"}

	StoreInfo   = Key{"storeInfo"}
	SystemStats = Key{"systemStats"}
	Wishlist    = Key{"wishlist"}
)
