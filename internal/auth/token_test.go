package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werioliveira/card-management/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := iss.Issue(core.User{ID: "u1", Email: "a@example.com", Name: "Ana"})
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
}

func TestParseRejects(t *testing.T) {
	iss, err := NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		old := *iss
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(core.User{ID: "u1"})
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewIssuer("another-secret-that-is-long", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(core.User{ID: "u1"})
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not-a-token")
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("short", time.Hour)
	assert.Error(t, err)

	iss, err := NewIssuer(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, iss.TTL())
}

func TestOwnerContext(t *testing.T) {
	_, ok := OwnerFromContext(context.Background())
	assert.False(t, ok)

	owner, ok := OwnerFromContext(WithOwner(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)
}
