package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/token"
)

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by login
	roles map[string][]model.Role
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: make(map[string]*model.User),
		roles: make(map[string][]model.Role),
	}
}

func (f *fakeDirectory) Create(ctx context.Context, login, password, firstName, lastName string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[login]; ok {
		return nil, ErrAlreadyExists
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: password,
		FirstName:    firstName,
		LastName:     lastName,
	}
	f.users[login] = user
	return user, nil
}

func (f *fakeDirectory) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[login]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *fakeDirectory) GetByID(ctx context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) VerifyPassword(user *model.User, password string) bool {
	return user.PasswordHash == password
}

func (f *fakeDirectory) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[userID], nil
}

func (f *fakeDirectory) assignRole(userID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = append(f.roles[userID], model.Role{ID: uuid.NewString(), Title: title})
}

type storedToken struct {
	userID    string
	expiresAt time.Time
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]storedToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]storedToken)}
}

func (f *fakeTokenStore) Insert(ctx context.Context, userID, tokenStr string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tokenStr] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) IsValid(ctx context.Context, tokenStr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[tokenStr]
	return ok && !stored.expiresAt.Before(time.Now()), nil
}

func (f *fakeTokenStore) Invalidate(ctx context.Context, tokenStr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, tokenStr)
	return nil
}

func (f *fakeTokenStore) InvalidateAllForUser(ctx context.Context, userID, exceptToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tokenStr, stored := range f.tokens {
		if stored.userID == userID && tokenStr != exceptToken {
			delete(f.tokens, tokenStr)
		}
	}
	return nil
}

func (f *fakeTokenStore) Rotate(ctx context.Context, userID, oldToken, newToken string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[oldToken]; !ok {
		return db.ErrNotFound
	}
	delete(f.tokens, oldToken)
	f.tokens[newToken] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevocations) Revoke(ctx context.Context, tokenStr string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.revoked[tokenStr] = ttl
	}
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenStr]
	return ok, nil
}

type authFixture struct {
	svc       *AuthService
	directory *fakeDirectory
	store     *fakeTokenStore
	revoked   *fakeRevocations
	codec     *token.Codec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	codec, err := token.NewCodec("test-secret", "HS256", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	directory := newFakeDirectory()
	store := newFakeTokenStore()
	revoked := newFakeRevocations()

	return &authFixture{
		svc:       NewAuthService(directory, store, revoked, codec),
		directory: directory,
		store:     store,
		revoked:   revoked,
		codec:     codec,
	}
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	signupAccess, signupRefresh, err := f.svc.Signup(ctx, "alice", "pw1", "Alice", "Smith")
	require.NoError(t, err)
	require.NotEmpty(t, signupAccess)
	require.NotEmpty(t, signupRefresh)

	loginAccess, loginRefresh, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NotEqual(t, signupAccess, loginAccess)
	require.NotEqual(t, signupRefresh, loginRefresh)

	// Both refresh tokens are live sessions.
	valid, err := f.store.IsValid(ctx, signupRefresh)
	require.NoError(t, err)
	require.True(t, valid)
	valid, err = f.store.IsValid(ctx, loginRefresh)
	require.NoError(t, err)
	require.True(t, valid)

	_, _, err = f.svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, "bob", "pw1")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.svc.Signup(ctx, "alice", "pw2", "", "")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSignupTokenCarriesNoRoles(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	access, _, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	claims, err := f.codec.Decode(access)
	require.NoError(t, err)
	require.Empty(t, claims.Roles)
}

func TestRefreshRotatesAndPicksUpLiveRoles(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	oldAccess, oldRefresh, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	user, err := f.directory.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	f.directory.assignRole(user.ID, "admin")

	newAccess, newRefresh, err := f.svc.Refresh(ctx, oldAccess, oldRefresh)
	require.NoError(t, err)

	// Old refresh token is consumed, the new one is live.
	valid, err := f.store.IsValid(ctx, oldRefresh)
	require.NoError(t, err)
	require.False(t, valid)
	valid, err = f.store.IsValid(ctx, newRefresh)
	require.NoError(t, err)
	require.True(t, valid)

	// Old access token was denylisted for its remaining lifetime.
	revoked, err := f.revoked.IsRevoked(ctx, oldAccess)
	require.NoError(t, err)
	require.True(t, revoked)

	// New claims reflect the role assigned after original issuance.
	claims, err := f.codec.Decode(newAccess)
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, claims.Roles)
}

func TestRefreshWithConsumedTokenFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	access, refresh, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	newAccess, _, err := f.svc.Refresh(ctx, access, refresh)
	require.NoError(t, err)

	_, _, err = f.svc.Refresh(ctx, newAccess, refresh)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshLoserOfRotationRaceFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	access, refresh, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	// Simulate the other refresh winning the rotation between our validity
	// check and our rotate.
	require.NoError(t, f.store.Invalidate(ctx, refresh))
	require.NoError(t, f.store.Insert(ctx, "someone-else-won", refresh+"x", time.Now().Add(time.Hour)))

	_, _, err = f.svc.Refresh(ctx, access, refresh)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshWithGarbageTokenFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, _, err := f.svc.Refresh(ctx, "", "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	access, refresh, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, access, refresh))

	valid, err := f.store.IsValid(ctx, refresh)
	require.NoError(t, err)
	require.False(t, valid)

	revoked, err := f.revoked.IsRevoked(ctx, access)
	require.NoError(t, err)
	require.True(t, revoked)

	// Second logout on the same refresh token is an auth failure, not a
	// distinct "already logged out" outcome.
	require.ErrorIs(t, f.svc.Logout(ctx, access, refresh), ErrUnauthorized)
}

func TestLogoutAllKeepsCurrentSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, refresh1, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)
	access2, refresh2, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, refresh3, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, f.svc.LogoutAll(ctx, access2, refresh2))

	for _, tokenStr := range []string{refresh1, refresh3} {
		valid, err := f.store.IsValid(ctx, tokenStr)
		require.NoError(t, err)
		require.False(t, valid)
	}

	valid, err := f.store.IsValid(ctx, refresh2)
	require.NoError(t, err)
	require.True(t, valid)

	// The presenting session's access token stays usable.
	_, err = f.svc.Authenticate(ctx, access2)
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	access, refresh, err := f.svc.Signup(ctx, "alice", "pw1", "", "")
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, access)
	require.NoError(t, err)
	require.NotEmpty(t, claims.UserID)

	require.NoError(t, f.svc.Logout(ctx, access, refresh))

	_, err = f.svc.Authenticate(ctx, access)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}
