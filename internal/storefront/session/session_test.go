package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/cart"
	"github.com/tair/furniture-storefront/internal/identity"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/route"
	"github.com/tair/furniture-storefront/internal/storefront/backendtest"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/storefront/view"
	"github.com/tair/furniture-storefront/kafka"
)

// fakeActors hands out one fake backend per identity key
type fakeActors struct {
	mu       sync.Mutex
	backends map[string]*backendtest.Fake
	live     map[string]bool
	admins   map[string]bool
}

func newFakeActors() *fakeActors {
	return &fakeActors{
		backends: make(map[string]*backendtest.Fake),
		live:     make(map[string]bool),
		admins:   make(map[string]bool),
	}
}

func (f *fakeActors) backend(key string) *backendtest.Fake {
	b, ok := f.backends[key]
	if !ok {
		principal := key
		if key == identity.AnonymousKey {
			principal = ""
		}
		b = backendtest.New(principal)
		for p, admin := range f.admins {
			b.Admins[p] = admin
		}
		f.backends[key] = b
	}
	return b
}

func (f *fakeActors) Get(id *identity.Identity) (domain.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[id.Key()] = true
	return f.backend(id.Key()), nil
}

func (f *fakeActors) Lookup(id *identity.Identity) (domain.Backend, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[id.Key()] {
		return nil, false
	}
	return f.backend(id.Key()), true
}

func (f *fakeActors) Retain(id *identity.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.live {
		if key != id.Key() {
			delete(f.live, key)
		}
	}
}

func (f *fakeActors) isLive(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[key]
}

func token(t *testing.T, principal string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": principal,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestSession(t *testing.T, actors *fakeActors, fragment string) *Session {
	t.Helper()
	s := New(
		Options{InitialFragment: fragment, LoginRetryDelay: time.Millisecond},
		actors,
		query.NewClient(query.NewMemoryStore(0), nil),
		identity.NewTokenProvider(),
		kafka.NopPublisher{},
		nil,
	)
	t.Cleanup(s.Close)
	return s
}

func TestSessionStartsAnonymous(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "#/product/p1")

	assert.Equal(t, route.Product("p1"), s.Route())
	assert.True(t, actors.isLive(identity.AnonymousKey))
	_, ok := s.Principal()
	assert.False(t, ok)
}

func TestLoginSwapsActorAndClearsCache(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "")
	ctx := context.Background()

	s.Queries.Catalog.Categories(ctx)
	anon := actors.backends[identity.AnonymousKey]
	require.Equal(t, 1, anon.Count("GetAllCategories"))

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)

	assert.False(t, actors.isLive(identity.AnonymousKey))
	assert.True(t, actors.isLive("alice"))

	s.Queries.Catalog.Categories(ctx)
	assert.Equal(t, 1, actors.backends["alice"].Count("GetAllCategories"), "cache cleared on identity change")
}

func TestLoginTwiceReplacesIdentity(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "")
	ctx := context.Background()

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)
	id, err := s.Login(ctx, token(t, "bob"))
	require.NoError(t, err)

	assert.Equal(t, "bob", id.Principal)
	principal, _ := s.Principal()
	assert.Equal(t, "bob", principal)
}

func TestAdminPageBlockedAfterLogout(t *testing.T) {
	actors := newFakeActors()
	actors.admins["alice"] = true
	s := newTestSession(t, actors, "#/admin")
	ctx := context.Background()

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, view.PageAdmin, sum.Page.Kind)
	assert.True(t, sum.IsAdmin)

	require.NoError(t, s.Logout(ctx))

	sum, err = s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, view.PageAdminAccessBlocked, sum.Page.Kind)
	assert.False(t, sum.IsAdmin)
}

func TestSummaryProfileSetup(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "")
	ctx := context.Background()

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.True(t, sum.ShowProfileSetup)

	require.NoError(t, s.Commands.Account.SaveProfile(ctx, domain.UserProfile{Name: "Alice"}))

	sum, err = s.Summarize(ctx)
	require.NoError(t, err)
	assert.False(t, sum.ShowProfileSetup)
	assert.Equal(t, "Alice", sum.Profile.Name)
}

func TestCheckoutClearsCartAndGoesHome(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "#/checkout")
	ctx := context.Background()

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)
	s.CartStore().Add(cart.Line{ProductID: "p1", Name: "Sofa", UnitPrice: 500, Quantity: 1})

	orderID, err := s.Checkout(ctx, CheckoutDetails{Name: "Alice", Phone: "555", Address: "Main St"})
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	assert.True(t, s.Cart().IsEmpty())
	assert.Eventually(t, func() bool { return s.Route() == route.Home() }, time.Second, 5*time.Millisecond)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "#/checkout")
	ctx := context.Background()

	s.CartStore().Add(cart.Line{ProductID: "p1", Quantity: 1, UnitPrice: 500})

	_, err := s.Checkout(ctx, CheckoutDetails{Name: "Alice", Phone: "555", Address: "Main St"})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, 1, s.Cart().ItemCount())
}

func TestViewProductRecordsViewWhenLoaded(t *testing.T) {
	actors := newFakeActors()
	s := newTestSession(t, actors, "")
	ctx := context.Background()

	_, err := s.Login(ctx, token(t, "alice"))
	require.NoError(t, err)
	alice := actors.backends["alice"]
	alice.PutProduct(domain.Product{ID: "p1", Name: "Sofa", IsActive: true})

	res := s.ViewProduct(ctx, "p1")
	require.True(t, res.Ready())
	s.ViewProduct(ctx, "missing")
	s.Commands.RecordView.Wait()

	assert.Equal(t, 1, alice.Count("IncrementProductViews"))
}

func TestNavigate(t *testing.T) {
	s := newTestSession(t, newFakeActors(), "")

	r := s.Navigate("#/orders")

	assert.Equal(t, route.Orders(), r)
	assert.Eventually(t, func() bool { return s.Route() == route.Orders() }, time.Second, 5*time.Millisecond)
}
