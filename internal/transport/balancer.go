package transport

import "sync"

// RoundRobin rotates through backend endpoints. A new actor takes the next endpoint.
type RoundRobin struct {
	mu        sync.Mutex
	endpoints []string
	current   int
}

// NewRoundRobin creates a balancer over endpoints
func NewRoundRobin(endpoints []string) *RoundRobin {
	return &RoundRobin{endpoints: append([]string(nil), endpoints...)}
}

// Next returns the next endpoint, or "" when none are configured
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(rr.endpoints) == 0 {
		return ""
	}
	endpoint := rr.endpoints[rr.current]
	rr.current = (rr.current + 1) % len(rr.endpoints)
	return endpoint
}

// Endpoints returns a copy of the configured endpoints
func (rr *RoundRobin) Endpoints() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string(nil), rr.endpoints...)
}
