package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is the lifetime of a session token.
	DefaultTTL = 7 * 24 * time.Hour

	minSecretBytes = 16
)

var (
	// ErrMissingSecret is returned by NewManager when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt: signing secret is required")
	// ErrShortSecret is returned by NewManager for secrets below 16 bytes.
	ErrShortSecret = errors.New("jwt: signing secret must be at least 16 bytes")
	// ErrInvalidToken is the single outcome of every failed verification.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Config configures a Manager.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Manager issues and verifies session tokens. It is safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// SessionClaims is the token payload.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager. A missing secret is a
// startup error.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrShortSecret
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(cfg.Now),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    cfg.Now,
		parser: jwt.NewParser(options...),
	}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID valid for the configured TTL.
func (m *Manager) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("jwt: empty user id")
	}

	now := m.now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    m.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by token. Bad signatures, expiry,
// malformed input and unexpected algorithms all return ErrInvalidToken.
func (m *Manager) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	parsed, err := m.parser.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
