package models

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a credential record. APIKey is empty unless the deployment
// issued a per-user key.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
	Role         string `json:"role"`
	APIKey       string `json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
