package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"melhado-backend/internal/models"
)

const userColumns = `id, email, password, name, role, avatar, created_at, updated_at`

// GetUserByEmail looks up an account by its lowercased email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := get(ctx, s.db, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", email, err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := get(ctx, s.db, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &user, nil
}

// ListUsers returns every account, optionally restricted to one role.
func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY created_at, email`
	if err := selectAll(ctx, s.db, &users, query, args...); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CreateUser inserts a user whose password is already hashed. An empty ID is
// filled in. Returns ErrConflict if the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	_, err := s.GetUserByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return fmt.Errorf("user %s: %w", user.Email, ErrConflict)
	case !errors.Is(err, ErrNotFound):
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password, :name, :role, :avatar, :created_at, :updated_at)
	`, user)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", user.Email, err)
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := get(ctx, s.db, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// CreateSession records a login under the token's id.
func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (:id, :user_id, :created_at, :expires_at)
	`, session)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// SessionExists reports whether the session is still live at unix time now.
func (s *Store) SessionExists(ctx context.Context, id string, now int64) (bool, error) {
	var count int
	err := get(ctx, s.db, &count, `SELECT COUNT(*) FROM sessions WHERE id = ? AND expires_at > ?`, id, now)
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	return count > 0, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := exec(ctx, s.db, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions prunes sessions that expired before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	n, err := exec(ctx, s.db, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return n, nil
}
