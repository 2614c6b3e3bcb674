package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only failure Verify reports. Expiry, tampering and
// malformed input are deliberately indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	PublicID string `json:"public_id"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the bearer tokens that authenticate every
// request after login. Tokens are self-contained; there is no server-side
// session or revocation list.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token carrying the user's public ID, valid for the
// configured TTL.
func (m *Manager) Issue(publicID string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		PublicID: publicID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   publicID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify checks signature, signing method and expiry, and returns the
// embedded public ID.
func (m *Manager) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid || claims.PublicID == "" {
		return "", ErrInvalidToken
	}

	return claims.PublicID, nil
}
