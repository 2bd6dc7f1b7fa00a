package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tokens "paysheet/internal/auth"
)

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	EnsureUser(ctx context.Context, user User) (bool, error)
}

type Service struct {
	store    UserStore
	secret   string
	tokenTTL time.Duration
}

func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Login checks the password and issues an access token. Unknown emails and
// wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := tokens.CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	claims := tokens.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}
	if user.EmployeeID != nil {
		claims.EmployeeID = *user.EmployeeID
	}
	token, err := tokens.GenerateToken(s.secret, claims, s.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "user_id", user.ID, "error", err)
	}
	return Session{Token: token, ExpiresAt: time.Now().Add(s.tokenTTL), User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	return s.store.GetUser(ctx, userID)
}

// Authenticate parses a bearer token.
func (s *Service) Authenticate(token string) (*tokens.Claims, error) {
	return tokens.ParseToken(s.secret, token)
}

// SeedUser creates a user with the given role if the email is free.
func (s *Service) SeedUser(ctx context.Context, email, password, role string) error {
	if !slices.Contains(Roles, role) {
		return ErrInvalidRole
	}
	hash, err := tokens.HashPassword(password)
	if err != nil {
		return err
	}
	created, err := s.store.EnsureUser(ctx, User{Email: email, Role: role, PasswordHash: hash})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		slog.Info("seeded user", "email", email, "role", role)
	}
	return nil
}
