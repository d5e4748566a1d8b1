package models

import "strings"

// Role decides which screens a user may open
type Role string

const (
	RoleStudent Role = "student"
	RoleCook    Role = "cook"
	RoleAdmin   Role = "admin"
)

// User is the profile returned by /users/me and /verify-code
type User struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SecondaryName string `json:"secondary_name"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	IsAdmin       bool   `json:"is_admin"`
	IsCook        bool   `json:"is_cook,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// FullName joins name and secondary name
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.SecondaryName)
}

// RoleFor derives the role from the admin/cook flags, falling back to the
// free-text status field
func RoleFor(u User) Role {
	status := strings.ToLower(u.Status)
	switch {
	case u.IsAdmin || strings.Contains(status, "admin"):
		return RoleAdmin
	case u.IsCook || strings.Contains(status, "cook"):
		return RoleCook
	default:
		return RoleStudent
	}
}

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Name          string `json:"name"`
	SecondaryName string `json:"secondary_name"`
	Email         string `json:"email"`
	Status        string `json:"status"`
}

// RegisterResponse reports whether a code was sent to a new or existing user
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// VerifyCodeRequest is the body of POST /verify-code
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyCodeResponse carries the bearer token issued after verification
type VerifyCodeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
