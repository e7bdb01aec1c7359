// Package token signs and verifies the JWT pair used by the auth service:
// short-lived access tokens carrying a role snapshot, and longer-lived
// refresh tokens whose validity is additionally anchored in the database.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const AdminRole = "admin"

// ErrInvalidToken covers every decode failure: bad signature, wrong signing
// method, malformed payload, or expired token. Callers translate it to 401.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload embedded in both token kinds. Roles are a snapshot
// taken at issuance time; refresh tokens carry no roles.
type Claims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the role snapshot grants admin access.
func (c *Claims) IsAdmin() bool {
	for _, role := range c.Roles {
		if role == AdminRole {
			return true
		}
	}
	return false
}

// CanAccessUser reports whether the claims may act on userID's resources:
// admins may act on anyone, everyone else only on themselves.
func (c *Claims) CanAccessUser(userID string) bool {
	return c.IsAdmin() || c.UserID == userID
}

// RemainingTTL returns how long the token stays naturally valid, never
// negative. Used to scope revocation entries to the token's own lifetime.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, errors.New("token: unknown signing algorithm " + algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("token: only HMAC signing methods are supported")
	}
	return &Codec{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// EncodeAccess mints an access token with the given role snapshot.
func (c *Codec) EncodeAccess(userID string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// EncodeRefresh mints a refresh token and returns its absolute expiry so the
// caller can persist both together.
func (c *Codec) EncodeRefresh(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.refreshTTL)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature and structure of tokenStr and returns its
// claims. Expired tokens fail here as well: jwt/v5 validates exp during
// parsing, which is exactly the behavior callers rely on.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
