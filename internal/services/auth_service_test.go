package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService(zerolog.Nop())

	token, err := svc.GenerateToken("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	issuer := NewAuthService(zerolog.Nop())
	token, err := issuer.GenerateToken("user-1", "alice@example.com")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	verifier := NewAuthService(zerolog.Nop())

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService(zerolog.Nop())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
