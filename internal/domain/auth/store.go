package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = "id, email, role, employee_id, status, password_hash, last_login, created_at"

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1) AND status = $2",
		strings.TrimSpace(email), StatusActive)
	return scanUser(row)
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrUserNotFound
	}
	return scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// EnsureUser inserts the user unless the email is already taken. It
// reports whether a row was created.
func (s *Store) EnsureUser(ctx context.Context, user User) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, email, role, employee_id, status, password_hash)
    VALUES ($1, lower($2), $3, $4, $5, $6)
    ON CONFLICT (email) DO NOTHING
  `, uuid.NewString(), strings.TrimSpace(user.Email), user.Role, user.EmployeeID, StatusActive, user.PasswordHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Role, &u.EmployeeID, &u.Status, &u.PasswordHash, &u.LastLogin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}
