package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, "HS256", accessTTL, refreshTTL)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	_, err := NewCodec("", "HS256", time.Hour, time.Hour)
	require.Error(t, err)

	_, err = NewCodec(testSecret, "NO-SUCH-ALG", time.Hour, time.Hour)
	require.Error(t, err)

	_, err = NewCodec(testSecret, "RS256", time.Hour, time.Hour)
	require.Error(t, err)
}

func TestAccessTokenRoundtrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)

	signed, err := codec.EncodeAccess("user-1", []string{"admin", "user"})
	require.NoError(t, err)

	claims, err := codec.Decode(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, []string{"admin", "user"}, claims.Roles)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestRefreshTokenRoundtrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)

	signed, expiresAt, err := codec.EncodeRefresh("user-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := codec.Decode(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Empty(t, claims.Roles)
}

func TestTokensAreUniquePerIssuance(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)

	first, err := codec.EncodeAccess("user-1", nil)
	require.NoError(t, err)
	second, err := codec.EncodeAccess("user-1", nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecodeRejectsExpired(t *testing.T) {
	codec := newTestCodec(t, -time.Minute, 24*time.Hour)

	signed, err := codec.EncodeAccess("user-1", nil)
	require.NoError(t, err)

	_, err = codec.Decode(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)
	other, err := NewCodec("other-secret", "HS256", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	signed, err := other.EncodeAccess("user-1", nil)
	require.NoError(t, err)

	_, err = codec.Decode(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)

	_, err := codec.Decode("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Decode("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemainingTTL(t *testing.T) {
	codec := newTestCodec(t, time.Hour, 24*time.Hour)

	signed, err := codec.EncodeAccess("user-1", nil)
	require.NoError(t, err)

	claims, err := codec.Decode(signed)
	require.NoError(t, err)

	remaining := claims.RemainingTTL(time.Now())
	require.Greater(t, remaining, 55*time.Minute)
	require.LessOrEqual(t, remaining, time.Hour)

	require.Equal(t, time.Duration(0), claims.RemainingTTL(time.Now().Add(2*time.Hour)))
}

func TestAccessPolicy(t *testing.T) {
	tests := []struct {
		name      string
		claims    Claims
		targetID  string
		canAccess bool
		isAdmin   bool
	}{
		{
			name:      "admin-accesses-anyone",
			claims:    Claims{UserID: "u1", Roles: []string{"admin"}},
			targetID:  "u2",
			canAccess: true,
			isAdmin:   true,
		},
		{
			name:      "user-accesses-self",
			claims:    Claims{UserID: "u1", Roles: []string{"user"}},
			targetID:  "u1",
			canAccess: true,
		},
		{
			name:     "user-denied-other",
			claims:   Claims{UserID: "u1", Roles: []string{"user"}},
			targetID: "u2",
		},
		{
			name:     "no-roles-denied-other",
			claims:   Claims{UserID: "u1"},
			targetID: "u2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.canAccess, tt.claims.CanAccessUser(tt.targetID))
			require.Equal(t, tt.isAdmin, tt.claims.IsAdmin())
		})
	}
}
