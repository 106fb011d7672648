package domain

// Caller resolves the backend bound to the current identity
type Caller interface {
	// Backend returns the actor of the current identity, or false while it is not built yet
	Backend() (Backend, bool)
	// Principal returns the authenticated principal, or false for anonymous callers
	Principal() (string, bool)
}
