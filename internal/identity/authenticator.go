package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// DefaultLoginRetryDelay is the pause between clearing a conflicting session and logging in again
const DefaultLoginRetryDelay = 300 * time.Millisecond

// Provider is the external identity issuer
type Provider interface {
	Login(ctx context.Context, credential string) (*Identity, error)
	Clear(ctx context.Context) error
}

// Authenticator tracks the session identity and notifies listeners on every change
type Authenticator struct {
	provider   Provider
	retryDelay time.Duration

	mu        sync.RWMutex
	current   *Identity
	listeners map[int]func(*Identity)
	nextID    int
}

// NewAuthenticator creates an authenticator over provider
func NewAuthenticator(provider Provider, retryDelay time.Duration) *Authenticator {
	return &Authenticator{
		provider:   provider,
		retryDelay: retryDelay,
		listeners:  make(map[int]func(*Identity)),
	}
}

// Identity returns the current identity or nil
func (a *Authenticator) Identity() *Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Login authenticates with credential. If the provider still holds an earlier session it
// is cleared and the login retried once after the retry delay.
func (a *Authenticator) Login(ctx context.Context, credential string) (*Identity, error) {
	id, err := a.provider.Login(ctx, credential)
	if errors.Is(err, ErrAlreadyAuthenticated) {
		logger.Warn(ctx).Msg("Identity provider reports an existing session, clearing and retrying login")

		if err := a.provider.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear identity: %w", err)
		}
		a.set(nil)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.retryDelay):
		}

		id, err = a.provider.Login(ctx, credential)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	a.set(id)
	logger.Info(ctx).Str("principal", id.Principal).Msg("Logged in")
	return id, nil
}

// Logout clears the provider session and the current identity
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.provider.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	a.set(nil)
	logger.Info(ctx).Msg("Logged out")
	return nil
}

// OnChange calls fn with the new identity (nil after logout) every time it changes
func (a *Authenticator) OnChange(fn func(*Identity)) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Authenticator) set(id *Identity) {
	a.mu.Lock()
	if a.current == id {
		a.mu.Unlock()
		return
	}
	a.current = id
	fns := make([]func(*Identity), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// TokenProvider accepts bearer tokens minted by an external identity service. It holds at
// most one session and refuses a second login until cleared.
type TokenProvider struct {
	mu      sync.Mutex
	current *Identity
}

// NewTokenProvider creates an empty provider
func NewTokenProvider() *TokenProvider {
	return &TokenProvider{}
}

// Login parses token into an identity
func (p *TokenProvider) Login(_ context.Context, token string) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return nil, ErrAlreadyAuthenticated
	}

	id, err := FromToken(token)
	if err != nil {
		return nil, err
	}
	p.current = id
	return id, nil
}

// Clear forgets the current session
func (p *TokenProvider) Clear(context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	return nil
}
