package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arogyanet/hospital-registry/config"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrKeyMismatch means the token verified but carries the wrong service key.
	ErrKeyMismatch = errors.New("invalid service key")
)

// serviceClaims is the payload both sides of the shared-secret handshake agree
// on: a standard JWT whose "key" claim must equal the configured service key.
type serviceClaims struct {
	jwt.RegisteredClaims
	Key string `json:"key"`
}

// Manager verifies (and issues) signed service tokens. It keeps no state
// between calls; every request is authenticated independently.
type Manager struct {
	cfg config.JWTConfig
}

func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Generate issues a service token carrying the configured service key.
// Intended for trusted callers provisioning credentials out of band.
func (m *Manager) Generate() (string, error) {
	now := time.Now()

	claims := serviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
		},
		Key: m.cfg.ServiceKey,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing service token: %w", err)
	}

	return signed, nil
}

// Verify checks the token's signature and expiry, then compares its embedded
// service key against the configured one. Returns ErrKeyMismatch when the
// signature is fine but the key claim disagrees, so callers can distinguish
// 401 from 403.
func (m *Manager) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&serviceClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	claims, ok := token.Claims.(*serviceClaims)
	if !ok || !token.Valid {
		return ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare([]byte(claims.Key), []byte(m.cfg.ServiceKey)) != 1 {
		return ErrKeyMismatch
	}

	return nil
}
