package service

import (
	"context"
	"time"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/token"
)

// RefreshTokenStore persists refresh tokens. A refresh token is valid iff a
// matching non-expired row exists; rotation consumes the old row and writes
// the new one atomically.
type RefreshTokenStore interface {
	Insert(ctx context.Context, userID, tokenStr string, expiresAt time.Time) error
	IsValid(ctx context.Context, tokenStr string) (bool, error)
	Invalidate(ctx context.Context, tokenStr string) error
	InvalidateAllForUser(ctx context.Context, userID, exceptToken string) error
	Rotate(ctx context.Context, userID, oldToken, newToken string, expiresAt time.Time) error
}

// RevocationCache denylists access tokens until their natural expiry.
type RevocationCache interface {
	Revoke(ctx context.Context, tokenStr string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenStr string) (bool, error)
}

// AuthService orchestrates token issuance, refresh rotation, and logout over
// the user directory, refresh-token store, and revocation cache. All methods
// are safe for concurrent use across sessions; the only shared mutable state
// lives in the store and the cache.
type AuthService struct {
	users   UserDirectory
	tokens  RefreshTokenStore
	revoked RevocationCache
	codec   *token.Codec
}

func NewAuthService(users UserDirectory, tokens RefreshTokenStore, revoked RevocationCache, codec *token.Codec) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		codec:   codec,
	}
}

// Signup creates the account and issues the first token pair. The role list
// of a fresh account is empty, so the access token carries no roles until a
// refresh after an assignment.
func (s *AuthService) Signup(ctx context.Context, login, password, firstName, lastName string) (string, string, error) {
	user, err := s.users.Create(ctx, login, password, firstName, lastName)
	if err != nil {
		return "", "", err
	}

	roles, err := s.users.ListRoles(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	return s.issuePair(ctx, user.ID, RoleTitles(roles))
}

func (s *AuthService) Login(ctx context.Context, login, password string) (string, string, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return "", "", err
	}

	if !s.users.VerifyPassword(user, password) {
		return "", "", ErrInvalidCredentials
	}

	roles, err := s.users.ListRoles(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	return s.issuePair(ctx, user.ID, RoleTitles(roles))
}

// Refresh rotates the refresh token and mints a fresh access token from live
// role state. The presented access token, if it still verifies, is denylisted
// for the remainder of its lifetime: the caller is getting a replacement, so
// the old one must stop working. A refresh token consumed by a concurrent
// rotation fails with ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (string, string, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return "", "", ErrUnauthorized
	}

	valid, err := s.tokens.IsValid(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}
	if !valid {
		return "", "", ErrUnauthorized
	}

	if err := s.revokeIfLive(ctx, accessToken); err != nil {
		return "", "", err
	}

	roles, err := s.users.ListRoles(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}

	newRefresh, expiresAt, err := s.codec.EncodeRefresh(claims.UserID)
	if err != nil {
		return "", "", err
	}

	if err := s.tokens.Rotate(ctx, claims.UserID, refreshToken, newRefresh, expiresAt); err != nil {
		if db.IsNotFound(err) {
			return "", "", ErrUnauthorized
		}
		return "", "", err
	}

	newAccess, err := s.codec.EncodeAccess(claims.UserID, RoleTitles(roles))
	if err != nil {
		return "", "", err
	}

	return newAccess, newRefresh, nil
}

// Logout invalidates the refresh token and denylists the access token. A
// second call with the same refresh token fails with ErrUnauthorized; there
// is no distinct "already logged out" outcome.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.requireValidRefresh(ctx, refreshToken); err != nil {
		return err
	}

	if err := s.tokens.Invalidate(ctx, refreshToken); err != nil {
		return err
	}

	return s.revokeIfLive(ctx, accessToken)
}

// LogoutAll invalidates every other refresh token of the user, keeping the
// presenting session intact.
func (s *AuthService) LogoutAll(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return ErrUnauthorized
	}

	valid, err := s.tokens.IsValid(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !valid {
		return ErrUnauthorized
	}

	return s.tokens.InvalidateAllForUser(ctx, claims.UserID, refreshToken)
}

// Authenticate verifies an access token for a protected request: signature,
// expiry, and absence from the denylist.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	revoked, err := s.revoked.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

func (s *AuthService) issuePair(ctx context.Context, userID string, roles []string) (string, string, error) {
	accessToken, err := s.codec.EncodeAccess(userID, roles)
	if err != nil {
		return "", "", err
	}

	refreshToken, expiresAt, err := s.codec.EncodeRefresh(userID)
	if err != nil {
		return "", "", err
	}

	if err := s.tokens.Insert(ctx, userID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) requireValidRefresh(ctx context.Context, refreshToken string) error {
	if _, err := s.codec.Decode(refreshToken); err != nil {
		return ErrUnauthorized
	}

	valid, err := s.tokens.IsValid(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !valid {
		return ErrUnauthorized
	}
	return nil
}

// revokeIfLive denylists accessToken for its remaining lifetime. An already
// expired or malformed token needs no entry.
func (s *AuthService) revokeIfLive(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil
	}
	return s.revoked.Revoke(ctx, accessToken, claims.RemainingTTL(time.Now()))
}
