package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     Route
	}{
		{name: "empty", fragment: "", want: Home()},
		{name: "bare hash", fragment: "#", want: Home()},
		{name: "root", fragment: "/", want: Home()},
		{name: "hash root", fragment: "#/", want: Home()},
		{name: "admin", fragment: "#/admin", want: Admin()},
		{name: "orders", fragment: "/orders", want: Orders()},
		{name: "checkout", fragment: "#/checkout", want: Checkout()},
		{name: "product", fragment: "#/product/abc-123", want: Product("abc-123")},
		{name: "product id kept verbatim", fragment: "#/product/a%20b/c?x=1", want: Product("a%20b/c?x=1")},
		{name: "product without id", fragment: "#/product/", want: NotFound()},
		{name: "product without slash", fragment: "#/product", want: NotFound()},
		{name: "trailing slash", fragment: "#/admin/", want: NotFound()},
		{name: "case sensitive", fragment: "#/Admin", want: NotFound()},
		{name: "missing leading slash", fragment: "#admin", want: NotFound()},
		{name: "unknown", fragment: "#/wishlist", want: NotFound()},
		{name: "double hash", fragment: "##/admin", want: NotFound()},
		{name: "newline in id", fragment: "#/product/a\nb", want: NotFound()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.fragment))
		})
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "#/", Encode(Home()))
	assert.Equal(t, "#/admin", Encode(Admin()))
	assert.Equal(t, "#/orders", Encode(Orders()))
	assert.Equal(t, "#/checkout", Encode(Checkout()))
	assert.Equal(t, "#/product/p-1", Encode(Product("p-1")))
	assert.Equal(t, "#/not-found", Encode(NotFound()))
	assert.Equal(t, "#/", Encode(Route{Kind: "bogus"}))
}

func TestCanonicalFragmentsRoundTrip(t *testing.T) {
	for _, r := range []Route{Home(), Admin(), Orders(), Checkout(), Product("sofa-42")} {
		assert.Equal(t, r, Decode(Encode(r)), r.String())
	}
	// not-found has a canonical fragment but it is not itself a known path
	assert.Equal(t, NotFound(), Decode(Encode(NotFound())))
}
