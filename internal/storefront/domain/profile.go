package domain

// UserRole is the backend role of a principal
type UserRole string

// Roles
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// UserProfile belongs to exactly one authenticated principal
type UserProfile struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}
