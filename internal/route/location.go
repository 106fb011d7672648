package route

import (
	"strings"
	"sync"
)

// Location is the source of the routing fragment, typically the browser address bar.
// Change notifications must be delivered asynchronously, never from inside SetFragment.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
	OnChange(fn func()) (cancel func())
}

// MemoryLocation is an in-process Location. Notifications run one at a time on a
// dispatcher goroutine, in the order the fragment changed.
type MemoryLocation struct {
	mu        sync.Mutex
	fragment  string
	listeners map[int]func()
	nextID    int

	events    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryLocation creates a location positioned at fragment
func NewMemoryLocation(fragment string) *MemoryLocation {
	l := &MemoryLocation{
		fragment:  normalize(fragment),
		listeners: make(map[int]func()),
		events:    make(chan struct{}, 64),
		done:      make(chan struct{}),
	}
	go l.dispatch()
	return l
}

// Fragment returns the current fragment including its leading '#'
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment replaces the fragment. Setting the same value does not notify.
func (l *MemoryLocation) SetFragment(fragment string) {
	fragment = normalize(fragment)

	l.mu.Lock()
	if fragment == l.fragment {
		l.mu.Unlock()
		return
	}
	l.fragment = fragment
	l.mu.Unlock()

	select {
	case l.events <- struct{}{}:
	case <-l.done:
	}
}

// OnChange registers fn for change notifications
func (l *MemoryLocation) OnChange(fn func()) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// Close stops the dispatcher. Pending notifications are dropped.
func (l *MemoryLocation) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *MemoryLocation) dispatch() {
	for {
		select {
		case <-l.done:
			return
		case <-l.events:
			l.mu.Lock()
			fns := make([]func(), 0, len(l.listeners))
			for _, fn := range l.listeners {
				fns = append(fns, fn)
			}
			l.mu.Unlock()

			for _, fn := range fns {
				fn()
			}
		}
	}
}

func normalize(fragment string) string {
	if fragment == "" || strings.HasPrefix(fragment, "#") {
		return fragment
	}
	return "#" + fragment
}
