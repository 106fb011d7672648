package route

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *recorder) record(rt Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, rt)
}

func (r *recorder) last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return Route{}
	}
	return r.routes[len(r.routes)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}

func TestObserverInitialRoute(t *testing.T) {
	loc := NewMemoryLocation("#/orders")
	defer loc.Close()

	obs := NewObserver(loc)
	defer obs.Close()

	assert.Equal(t, Orders(), obs.Current())
}

func TestObserverPublishesChanges(t *testing.T) {
	loc := NewMemoryLocation("")
	defer loc.Close()

	obs := NewObserver(loc)
	defer obs.Close()

	rec := &recorder{}
	unsubscribe := obs.Subscribe(rec.record)
	defer unsubscribe()

	require.Equal(t, 1, rec.count())
	assert.Equal(t, Home(), rec.last())

	NewNavigator(loc).Navigate(Product("chair-7"))

	assert.Eventually(t, func() bool { return rec.last() == Product("chair-7") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Product("chair-7"), obs.Current())
}

func TestObserverSubscribeCatchesEarlierChange(t *testing.T) {
	loc := NewMemoryLocation("#/")
	defer loc.Close()

	// a location that never notifies models a change landing before the listener is attached
	silent := &silentLocation{Location: loc}
	obs := NewObserver(silent)
	defer obs.Close()

	silent.fragment = "#/checkout"

	rec := &recorder{}
	obs.Subscribe(rec.record)

	assert.Equal(t, Checkout(), rec.last())
	assert.Equal(t, Checkout(), obs.Current())
}

func TestObserverUnsubscribe(t *testing.T) {
	loc := NewMemoryLocation("#/")
	defer loc.Close()

	obs := NewObserver(loc)
	defer obs.Close()

	rec := &recorder{}
	unsubscribe := obs.Subscribe(rec.record)
	unsubscribe()

	loc.SetFragment("#/admin")

	assert.Eventually(t, func() bool { return obs.Current() == Admin() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestMemoryLocationSkipsUnchangedFragment(t *testing.T) {
	loc := NewMemoryLocation("/admin")
	defer loc.Close()

	assert.Equal(t, "#/admin", loc.Fragment())

	var mu sync.Mutex
	calls := 0
	loc.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	loc.SetFragment("#/admin")
	loc.SetFragment("#/orders")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)
}

type silentLocation struct {
	Location
	fragment string
}

func (s *silentLocation) Fragment() string {
	if s.fragment != "" {
		return s.fragment
	}
	return s.Location.Fragment()
}

func (s *silentLocation) OnChange(func()) func() { return func() {} }

// racingLocation moves to a newer fragment and notifies listeners while the observer is
// still reading the older one
type racingLocation struct {
	mu        sync.Mutex
	fragment  string
	listeners []func()
	reads     int
	raceOn    int
	next      string
	notified  chan struct{}
}

func (l *racingLocation) Fragment() string {
	l.mu.Lock()
	l.reads++
	current := l.fragment
	race := l.reads == l.raceOn
	if race {
		l.fragment = l.next
	}
	listeners := append([]func(){}, l.listeners...)
	l.mu.Unlock()

	if race {
		go func() {
			for _, fn := range listeners {
				fn()
			}
			close(l.notified)
		}()
		// give the notification a head start over the pending older read
		time.Sleep(20 * time.Millisecond)
	}
	return current
}

func (l *racingLocation) SetFragment(fragment string) {
	l.mu.Lock()
	l.fragment = fragment
	l.mu.Unlock()
}

func (l *racingLocation) OnChange(fn func()) func() {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
	return func() {}
}

func TestObserverNewerFragmentWinsOverPendingRead(t *testing.T) {
	// read 1 is the constructor, read 2 is the resolve inside Subscribe
	loc := &racingLocation{fragment: "#/", raceOn: 2, next: "#/admin", notified: make(chan struct{})}
	obs := NewObserver(loc)
	defer obs.Close()

	rec := &recorder{}
	unsubscribe := obs.Subscribe(rec.record)
	defer unsubscribe()

	select {
	case <-loc.notified:
	case <-time.After(time.Second):
		t.Fatal("change notification never ran")
	}

	assert.Equal(t, Admin(), obs.Current())
	assert.Equal(t, Admin(), rec.last())
}
