// Package identity decides who a browser session belongs to. The only
// implementation is a single configured credential pair; it stands in for
// a real identity provider and should be replaced before production use.
package identity

import (
	"context"
	"crypto/subtle"
	"fmt"

	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// Identity is an authenticated end user
type Identity struct {
	UserID string
}

// Provider authenticates a username and password
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// StaticProvider accepts exactly one username/password pair. The password
// is held only as a bcrypt hash.
type StaticProvider struct {
	username     string
	passwordHash string
}

var _ Provider = (*StaticProvider)(nil)

func NewStaticProvider(username, password string) (*StaticProvider, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &StaticProvider{
		username:     username,
		passwordHash: hash,
	}, nil
}

func (p *StaticProvider) Authenticate(_ context.Context, username, password string) (Identity, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password
	passwordOK := CheckPasswordHash(password, p.passwordHash)
	if !usernameOK || !passwordOK {
		return Identity{}, apperrors.ErrInvalidCredentials
	}
	return Identity{UserID: p.username}, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
