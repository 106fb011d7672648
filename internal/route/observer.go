package route

import (
	"sync"
)

// Observer tracks the current route of a Location and publishes every recomputed
// value to its subscribers.
type Observer struct {
	loc Location

	// resolving serialises reading the fragment, storing it and publishing it, so an older
	// fragment can never overwrite a newer one
	resolving sync.Mutex

	mu      sync.RWMutex
	current Route
	subs    map[int]func(Route)
	nextID  int

	stop       func()
	onResolved func(Route)
}

// ObserverOption customises an Observer
type ObserverOption func(*Observer)

// WithResolveHook calls fn every time a route is recomputed
func WithResolveHook(fn func(Route)) ObserverOption {
	return func(o *Observer) { o.onResolved = fn }
}

// NewObserver decodes the initial fragment and starts listening for changes
func NewObserver(loc Location, opts ...ObserverOption) *Observer {
	o := &Observer{
		loc:     loc,
		current: Decode(loc.Fragment()),
		subs:    make(map[int]func(Route)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.stop = loc.OnChange(func() { o.resolve(-1, nil) })
	return o
}

// Current returns the last resolved route
func (o *Observer) Current() Route {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// Subscribe registers fn and resolves once synchronously, so a fragment change that
// happened between construction and subscription is not missed. fn always receives the
// current route before Subscribe returns. fn must not call Subscribe itself.
func (o *Observer) Subscribe(fn func(Route)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	o.resolve(id, fn)

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Close stops listening to the location
func (o *Observer) Close() {
	if o.stop != nil {
		o.stop()
	}
}

// resolve recomputes the route and publishes it to every subscriber except skip, then to
// self when given
func (o *Observer) resolve(skip int, self func(Route)) {
	o.resolving.Lock()
	defer o.resolving.Unlock()

	r := Decode(o.loc.Fragment())

	o.mu.Lock()
	o.current = r
	fns := make([]func(Route), 0, len(o.subs))
	for id, fn := range o.subs {
		if id != skip {
			fns = append(fns, fn)
		}
	}
	o.mu.Unlock()

	if o.onResolved != nil {
		o.onResolved(r)
	}
	for _, fn := range fns {
		fn(r)
	}
	if self != nil {
		self(r)
	}
}

// Navigator writes routes into a Location
type Navigator struct {
	loc Location
}

// NewNavigator creates a navigator for loc
func NewNavigator(loc Location) Navigator {
	return Navigator{loc: loc}
}

// Navigate writes the canonical fragment of r. Observers see the change asynchronously.
func (n Navigator) Navigate(r Route) {
	n.loc.SetFragment(Encode(r))
}

// NavigateFragment writes a raw fragment, e.g. one typed by the shopper
func (n Navigator) NavigateFragment(fragment string) {
	n.loc.SetFragment(fragment)
}
