package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager := New([]byte("test-secret"), time.Hour)

	tokenString, err := manager.Issue("some-user-id", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := manager.Verify(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "some-user-id", claims.User.ID)
	assert.Equal(t, "alice", claims.User.Username)

	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := New([]byte("test-secret"), -time.Minute)

	tokenString, err := manager.Issue("some-user-id", "alice")
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	manager := New([]byte("test-secret"), time.Hour)

	tokenString, err := manager.Issue("some-user-id", "alice")
	require.NoError(t, err)

	tampered := []byte(tokenString)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = manager.Verify(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := New([]byte("test-secret"), time.Hour)
	verifier := New([]byte("another-secret"), time.Hour)

	tokenString, err := issuer.Issue("some-user-id", "alice")
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := New([]byte("test-secret"), time.Hour)

	_, err := manager.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
