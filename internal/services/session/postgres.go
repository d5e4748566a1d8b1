package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"cafeteria/internal/database"
	"cafeteria/internal/logger"
	"cafeteria/internal/models"
)

// PostgresStore keeps one session row per terminal in client_sessions, so a
// kiosk keeps its login across restarts and machines can be swapped
type PostgresStore struct {
	db       *database.DB
	terminal string
	logger   *logger.Logger
}

func NewPostgresStore(db *database.DB, terminal string, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:       db,
		terminal: terminal,
		logger:   log,
	}
}

func (p *PostgresStore) Load(ctx context.Context) (Session, error) {
	var (
		s         Session
		role      string
		userJSON  []byte
		updatedAt time.Time
	)
	err := p.db.QueryRow(ctx, database.GetSessionSQL, p.terminal).Scan(&s.Token, &role, &userJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	s.Role = models.Role(role)
	if len(userJSON) > 0 {
		var user models.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			return Session{}, fmt.Errorf("failed to parse stored user: %w", err)
		}
		s.User = &user
	}

	p.logger.Debug("session_loaded", "Loaded session from database", "", map[string]interface{}{
		"terminal":   p.terminal,
		"updated_at": updatedAt,
	})
	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s Session) error {
	var userJSON []byte
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		userJSON = data
	}

	if err := p.db.Exec(ctx, database.UpsertSessionSQL, p.terminal, s.Token, string(s.Role), userJSON); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	if err := p.db.Exec(ctx, database.DeleteSessionSQL, p.terminal); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
