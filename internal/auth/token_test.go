package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "user-1", Role: domain.RoleEditor, IsInternal: true}

	token, exp, err := manager.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), exp, time.Minute)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, domain.RoleEditor, claims.Role)
	require.True(t, claims.IsInternal)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)
	other := NewTokenManager("other-secret", 30)

	token, _, err := manager.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleClient})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)
	_, err := manager.ParseToken("not.a.token")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass", 0)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hashed)

	require.NoError(t, ComparePassword(hashed, "s3cret-pass"))
	require.Error(t, ComparePassword(hashed, "wrong"))
}
