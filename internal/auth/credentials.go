package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is a dashboard account.
type User struct {
	ID           string
	Email        string
	Name         string
	Roles        []string
	PasswordHash string
	Active       bool
}

// UserStore looks up accounts by email.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
}

// PGUserStore reads accounts from the users table.
type PGUserStore struct {
	db core.DBTX
}

// NewPGUserStore creates a store over db.
func NewPGUserStore(db core.DBTX) *PGUserStore {
	return &PGUserStore{db: db}
}

const userByEmailSQL = `SELECT id::text, email, COALESCE(name, ''), COALESCE(password, ''), COALESCE(role, ''), active
FROM users WHERE lower(email) = lower($1)`

// UserByEmail returns the account for email, or ErrInvalidCredentials when
// none exists.
func (s *PGUserStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	var role string
	err := s.db.QueryRow(ctx, userByEmailSQL, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if role != "" {
		u.Roles = []string{role}
	}
	return &u, nil
}

// Authenticator checks email and password pairs.
type Authenticator struct {
	store UserStore
}

// NewAuthenticator creates an authenticator over store.
func NewAuthenticator(store UserStore) *Authenticator {
	return &Authenticator{store: store}
}

// Authenticate returns the account matching email and password.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := a.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.Active || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
