package session

import (
	"context"
	"errors"

	"cafeteria/internal/models"
)

// ErrNoSession means nothing is stored for this terminal
var ErrNoSession = errors.New("no stored session")

// Session is what survives between runs: the bearer token, the derived role
// and the last known profile
type Session struct {
	Token string       `json:"token"`
	Role  models.Role  `json:"role"`
	User  *models.User `json:"current_user,omitempty"`
}

// New builds a session for a freshly verified user
func New(token string, user models.User) Session {
	return Session{
		Token: token,
		Role:  models.RoleFor(user),
		User:  &user,
	}
}

// Valid reports whether the session can authenticate calls
func (s Session) Valid() bool {
	return s.Token != ""
}

// Store persists a single session
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
