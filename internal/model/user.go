package model

// Role represents a user's permission level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a string to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// User represents an account on the server. Inactive users stay visible as
// existing assignees but are excluded from assignment candidates.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// AuthResponse is the server's reply to login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
