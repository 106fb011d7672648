package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestFromToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "principal-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	id, err := FromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "principal-1", id.Principal)
	assert.Equal(t, "admin", id.Role)
	assert.Equal(t, token, id.Token)
	assert.Equal(t, "principal-1", id.Key())
	assert.True(t, id.Authenticated())
}

func TestFromTokenPrefersPrincipalClaim(t *testing.T) {
	id, err := FromToken(signToken(t, jwt.MapClaims{"sub": "s", "principal": "p"}))
	require.NoError(t, err)
	assert.Equal(t, "p", id.Principal)
}

func TestFromTokenErrors(t *testing.T) {
	_, err := FromToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = FromToken(signToken(t, jwt.MapClaims{"role": "user"}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = FromToken(signToken(t, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()}))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAnonymousKey(t *testing.T) {
	var id *Identity
	assert.Equal(t, AnonymousKey, id.Key())
	assert.False(t, id.Authenticated())
}

type scriptedProvider struct {
	mu      sync.Mutex
	results []error
	logins  int
	clears  int
}

func (p *scriptedProvider) Login(_ context.Context, credential string) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.logins < len(p.results) {
		err = p.results[p.logins]
	}
	p.logins++
	if err != nil {
		return nil, err
	}
	return &Identity{Principal: credential, Token: "t"}, nil
}

func (p *scriptedProvider) Clear(context.Context) error {
	p.mu.Lock()
	p.clears++
	p.mu.Unlock()
	return nil
}

func TestLoginRetriesOnceAfterConflict(t *testing.T) {
	provider := &scriptedProvider{results: []error{ErrAlreadyAuthenticated}}
	auth := NewAuthenticator(provider, time.Millisecond)

	var changes []string
	auth.OnChange(func(id *Identity) { changes = append(changes, id.Key()) })

	id, err := auth.Login(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Principal)
	assert.Equal(t, 2, provider.logins)
	assert.Equal(t, 1, provider.clears)
	assert.Equal(t, []string{"alice"}, changes, "nil -> nil is not a change")
}

func TestLoginGivesUpAfterSecondConflict(t *testing.T) {
	provider := &scriptedProvider{results: []error{ErrAlreadyAuthenticated, ErrAlreadyAuthenticated}}
	auth := NewAuthenticator(provider, time.Millisecond)

	_, err := auth.Login(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)
	assert.Equal(t, 2, provider.logins)
	assert.Nil(t, auth.Identity())
}

func TestLoginOtherErrorNotRetried(t *testing.T) {
	boom := errors.New("popup closed")
	provider := &scriptedProvider{results: []error{boom}}
	auth := NewAuthenticator(provider, time.Millisecond)

	_, err := auth.Login(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, provider.logins)
	assert.Equal(t, 0, provider.clears)
}

func TestLogout(t *testing.T) {
	auth := NewAuthenticator(&scriptedProvider{}, time.Millisecond)
	_, err := auth.Login(context.Background(), "bob")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background()))
	assert.Nil(t, auth.Identity())
}

func TestTokenProviderSwitchesIdentity(t *testing.T) {
	auth := NewAuthenticator(NewTokenProvider(), time.Millisecond)

	_, err := auth.Login(context.Background(), signToken(t, jwt.MapClaims{"sub": "first"}))
	require.NoError(t, err)

	id, err := auth.Login(context.Background(), signToken(t, jwt.MapClaims{"sub": "second"}))
	require.NoError(t, err)
	assert.Equal(t, "second", id.Principal)
	assert.Equal(t, "second", auth.Identity().Principal)
}
