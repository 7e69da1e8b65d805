// Package auth provides login and token validation over the "usuarios"
// collection of the record store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evemind/evemind/internal/store"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserNotFound       = errors.New("auth: user not found")
)

// User is the public view of a "usuarios" record (password hash stripped).
type User struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Service provides authentication operations.
type Service struct {
	store      *store.Store
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service backed by the record store.
func NewService(st *store.Store, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		store:      st,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login validates email/password against the usuarios collection and returns
// the user plus access and refresh JWT tokens. Passwords are stored as bcrypt
// hashes in the "senha" field.
func (s *Service) Login(email, password string) (*User, string, string, error) {
	user, hash, err := s.lookup(email)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err := IssueAccessToken(s.jwtSecret, user.ID, user.Email, user.Role, s.accessTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err := IssueRefreshToken(s.jwtSecret, user.ID, user.Email, user.Role, s.refreshTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

// Validate checks an access token and returns its claims.
func (s *Service) Validate(token string) (*Claims, error) {
	claims, err := ValidateToken(s.jwtSecret, token)
	if err != nil {
		return nil, fmt.Errorf("auth.Validate: %w", err)
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("auth.Validate: %w", ErrInvalidToken)
	}
	return claims, nil
}

// Refresh validates a refresh token and issues a new access token, verifying
// the user still exists and re-reading the current role.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.Refresh: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.Refresh: %w", ErrInvalidToken)
	}

	rec, err := s.store.ReadByID("usuarios", claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.Refresh: %w", ErrUserNotFound)
	}
	user := userFromRecord(rec)

	newAccess, err := IssueAccessToken(s.jwtSecret, user.ID, user.Email, user.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.Refresh: %w", err)
	}

	return newAccess, nil
}

// lookup finds an active user by exact email. The store's string filters
// match by substring, so the comparison is done here.
func (s *Service) lookup(email string) (*User, string, error) {
	records, err := s.store.Read("usuarios", nil)
	if err != nil {
		return nil, "", err
	}

	for _, rec := range records {
		if rec["email"] != email {
			continue
		}
		if active, ok := rec["ativo"].(bool); ok && !active {
			continue
		}
		hash, _ := rec["senha"].(string)
		return userFromRecord(rec), hash, nil
	}

	return nil, "", ErrUserNotFound
}

func userFromRecord(rec store.Record) *User {
	u := &User{ID: rec.ID()}
	u.Nome, _ = rec["nome"].(string)
	u.Email, _ = rec["email"].(string)
	u.Role, _ = rec["tipo"].(string)
	if u.Role == "" {
		u.Role = "member"
	}
	return u
}
