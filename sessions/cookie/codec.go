package cookie

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrInvalidCookie = errors.New("invalid session cookie")

type claims struct {
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies session cookie values. The value is an HS256
// JWT whose sid claim is the server-side session id; nothing else about the
// session leaves the server.
type Codec struct {
	secret []byte
	issuer string
	maxAge time.Duration
}

func NewCodec(secret, issuer string, maxAge time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("cookie secret is required")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("cookie max age must be positive")
	}
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		maxAge: maxAge,
	}, nil
}

func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode returns the signed cookie value for sessionID
func (c *Codec) Encode(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID is required")
	}
	now := NowTimeFunc()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims{
		SessionID: sessionID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.maxAge)),
			ID:        uuid.New().String(),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the session id it carries
func (c *Codec) Decode(value string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(value, &claims{}, func(*jwtlib.Token) (any, error) {
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(c.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || cl.SessionID == "" {
		return "", ErrInvalidCookie
	}
	return cl.SessionID, nil
}
