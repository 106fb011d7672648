// Package session composes the storefront state owned by one shopper: the route, the cart,
// the identity, the per-identity backend actor and the query cache.
package session

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tair/furniture-storefront/internal/cart"
	"github.com/tair/furniture-storefront/internal/identity"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/route"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/storefront/usecase/command"
	qh "github.com/tair/furniture-storefront/internal/storefront/usecase/query"
	"github.com/tair/furniture-storefront/internal/storefront/view"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// Options configures a session
type Options struct {
	InitialFragment string
	LoginRetryDelay time.Duration
}

// Queries groups the read handlers
type Queries struct {
	Catalog *qh.CatalogHandler
	Orders  *qh.OrdersHandler
	Account *qh.AccountHandler
	Store   *qh.StoreHandler
}

// Commands groups the write handlers
type Commands struct {
	Checkout    *command.CheckoutHandler
	Products    *command.ProductHandler
	Categories  *command.CategoryHandler
	OrderStatus *command.UpdateOrderStatusHandler
	Account     *command.AccountHandler
	RecordView  *command.RecordViewHandler
}

// Session is the storefront state of one shopper
type Session struct {
	location  *route.MemoryLocation
	observer  *route.Observer
	navigator route.Navigator
	cart      *cart.Store
	auth      *identity.Authenticator
	actors    Actors
	client    *query.Client
	metrics   *metrics.Metrics

	Queries  Queries
	Commands Commands

	stops []func()
}

var _ domain.Caller = (*Session)(nil)

// New wires a session and builds the anonymous actor
func New(opts Options, actors Actors, client *query.Client, provider identity.Provider, events command.EventPublisher, m *metrics.Metrics) *Session {
	if opts.LoginRetryDelay <= 0 {
		opts.LoginRetryDelay = identity.DefaultLoginRetryDelay
	}

	loc := route.NewMemoryLocation(opts.InitialFragment)
	s := &Session{
		location:  loc,
		navigator: route.NewNavigator(loc),
		cart:      cart.NewStore(),
		auth:      identity.NewAuthenticator(provider, opts.LoginRetryDelay),
		actors:    actors,
		client:    client,
		metrics:   m,
	}
	s.observer = route.NewObserver(loc, route.WithResolveHook(func(r route.Route) {
		m.RouteChanged(string(r.Kind))
	}))

	s.Queries = Queries{
		Catalog: qh.NewCatalogHandler(s, client),
		Orders:  qh.NewOrdersHandler(s, client),
		Account: qh.NewAccountHandler(s, client),
		Store:   qh.NewStoreHandler(s, client),
	}
	s.Commands = Commands{
		Checkout:    command.NewCheckoutHandler(s, client, events),
		Products:    command.NewProductHandler(s, client),
		Categories:  command.NewCategoryHandler(s, client),
		OrderStatus: command.NewUpdateOrderStatusHandler(s, client),
		Account:     command.NewAccountHandler(s, client),
		RecordView:  command.NewRecordViewHandler(s, client, events),
	}

	s.stops = append(s.stops,
		s.auth.OnChange(s.identityChanged),
		s.cart.Subscribe(func(c cart.Cart) { m.SetCartItems(c.ItemCount()) }),
	)

	s.prepareActor(nil)
	return s
}

// Backend returns the actor of the current identity
func (s *Session) Backend() (domain.Backend, bool) {
	return s.actors.Lookup(s.auth.Identity())
}

// Principal returns the signed-in principal
func (s *Session) Principal() (string, bool) {
	id := s.auth.Identity()
	if !id.Authenticated() {
		return "", false
	}
	return id.Principal, true
}

// Identity returns the current identity or nil
func (s *Session) Identity() *identity.Identity {
	return s.auth.Identity()
}

// identityChanged drops the old actor and every cached result, then builds the new actor
func (s *Session) identityChanged(id *identity.Identity) {
	ctx := context.Background()
	s.actors.Retain(id)
	if err := s.client.Clear(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to clear query cache after identity change")
	}
	s.prepareActor(id)
}

func (s *Session) prepareActor(id *identity.Identity) {
	if _, err := s.actors.Get(id); err != nil {
		logger.Logger.Error().
			Err(err).
			Str("identity", id.Key()).
			Msg("Failed to create backend actor")
	}
}

// Login signs in with a bearer token
func (s *Session) Login(ctx context.Context, token string) (*identity.Identity, error) {
	return s.auth.Login(ctx, token)
}

// Logout signs out; the query cache is cleared with the identity
func (s *Session) Logout(ctx context.Context) error {
	return s.auth.Logout(ctx)
}

// Route returns the current route
func (s *Session) Route() route.Route {
	return s.observer.Current()
}

// SubscribeRoute calls fn with the current route and every later change
func (s *Session) SubscribeRoute(fn func(route.Route)) (unsubscribe func()) {
	return s.observer.Subscribe(fn)
}

// Navigate moves to fragment and returns the route it decodes to. Observers are notified
// asynchronously.
func (s *Session) Navigate(fragment string) route.Route {
	s.navigator.NavigateFragment(fragment)
	return route.Decode(fragment)
}

// NavigateTo moves to r
func (s *Session) NavigateTo(r route.Route) {
	s.navigator.Navigate(r)
}

// Cart returns the cart snapshot
func (s *Session) Cart() cart.Cart {
	return s.cart.Snapshot()
}

// CartStore exposes the cart holder for writes
func (s *Session) CartStore() *cart.Store {
	return s.cart
}

// CheckoutDetails are the delivery details entered at checkout
type CheckoutDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Checkout places an order for the cart, then empties the cart and returns home
func (s *Session) Checkout(ctx context.Context, d CheckoutDetails) (string, error) {
	orderID, err := s.Commands.Checkout.Handle(ctx, command.CheckoutCommand{
		Name:    d.Name,
		Phone:   d.Phone,
		Address: d.Address,
		Cart:    s.cart.Snapshot(),
	})
	if err != nil {
		return "", err
	}

	s.cart.Clear()
	s.navigator.Navigate(route.Home())
	return orderID, nil
}

// ViewProduct loads a product and records the view once it is loaded
func (s *Session) ViewProduct(ctx context.Context, id string) query.Result[*domain.Product] {
	res := s.Queries.Catalog.Product(ctx, id)
	if res.Ready() && res.Data != nil {
		s.Commands.RecordView.Handle(ctx, id)
	}
	return res
}

// Summary is the session overview served to the shell
type Summary struct {
	Route            route.Route         `json:"route"`
	Page             view.Page           `json:"page"`
	Cart             cart.Cart           `json:"cart"`
	Identity         *identity.Identity  `json:"identity,omitempty"`
	Authenticated    bool                `json:"authenticated"`
	IsAdmin          bool                `json:"isAdmin"`
	AdminLoading     bool                `json:"adminLoading"`
	ShowProfileSetup bool                `json:"showProfileSetup"`
	Profile          *domain.UserProfile `json:"profile,omitempty"`
}

// Summarize resolves the current page with the admin and profile queries fetched in parallel
func (s *Session) Summarize(ctx context.Context) (Summary, error) {
	id := s.auth.Identity()
	state := view.State{
		Cart:          s.cart.Snapshot(),
		Authenticated: id.Authenticated(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state.IsAdmin = s.Queries.Account.IsAdmin(gctx)
		return nil
	})
	g.Go(func() error {
		state.Profile = s.Queries.Account.Profile(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("failed to summarize session: %w", err)
	}

	r := s.observer.Current()
	return Summary{
		Route:            r,
		Page:             view.Select(r, state),
		Cart:             state.Cart,
		Identity:         id,
		Authenticated:    state.Authenticated,
		IsAdmin:          state.IsAdmin.Ready() && state.IsAdmin.Data,
		AdminLoading:     state.IsAdmin.Loading(),
		ShowProfileSetup: view.ShowProfileSetup(state),
		Profile:          state.Profile.Data,
	}, nil
}

// IsAdmin reports whether the signed-in caller is an admin; it fails closed
func (s *Session) IsAdmin(ctx context.Context) bool {
	res := s.Queries.Account.IsAdmin(ctx)
	return res.Ready() && res.Data
}

// Close stops listeners and waits for background work
func (s *Session) Close() {
	for _, stop := range s.stops {
		stop()
	}
	s.observer.Close()
	s.location.Close()
	s.Commands.RecordView.Wait()
}
