package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AnonymousKey keys resources that belong to no authenticated principal
const AnonymousKey = "anonymous"

var (
	ErrAlreadyAuthenticated = errors.New("user is already authenticated")
	ErrInvalidToken         = errors.New("invalid identity token")
	ErrTokenExpired         = errors.New("identity token expired")
)

// Identity is an authenticated principal and the bearer token proving it
type Identity struct {
	Principal string    `json:"principal"`
	Role      string    `json:"role,omitempty"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Key identifies the resource scope of id; a nil identity is anonymous
func (id *Identity) Key() string {
	if id == nil || id.Principal == "" {
		return AnonymousKey
	}
	return id.Principal
}

// Authenticated reports whether id carries a principal
func (id *Identity) Authenticated() bool {
	return id != nil && id.Principal != ""
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Principal string `json:"principal,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FromToken reads the principal out of a JWT issued by the identity service. The
// signature is not checked here; the backend verifies every call.
func FromToken(token string) (*Identity, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	principal := claims.Principal
	if principal == "" {
		principal = claims.Subject
	}
	if principal == "" {
		return nil, fmt.Errorf("%w: no principal claim", ErrInvalidToken)
	}

	id := &Identity{
		Principal: principal,
		Role:      claims.Role,
		Token:     token,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
		if time.Now().After(id.ExpiresAt) {
			return nil, ErrTokenExpired
		}
	}

	return id, nil
}
