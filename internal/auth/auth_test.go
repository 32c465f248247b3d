package auth_test

import (
	"testing"
	"time"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-signing-key")

func somePrincipal(role string) auth.Principal {
	return auth.Principal{
		ID:    uuid.New(),
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Role:  role,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	p := somePrincipal(auth.RoleUser)

	token, err := auth.GenerateToken(p, secret, time.Hour)
	require.NoError(t, err)

	got, err := auth.ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken(somePrincipal(auth.RoleUser), secret, time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken(token, []byte("some other key"))
	require.Error(t, err)
	assert.Equal(t, apperr.Authentication, apperr.KindOf(err))
}

func TestParseTokenExpired(t *testing.T) {
	token, err := auth.GenerateToken(somePrincipal(auth.RoleUser), secret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(token, secret)
	require.Error(t, err)
	assert.Equal(t, apperr.Authentication, apperr.KindOf(err))
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := auth.ParseToken("not.a.jwt", secret)
	require.Error(t, err)
	assert.Equal(t, apperr.Authentication, apperr.KindOf(err))
}

func TestRolePreservedAcrossRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken(somePrincipal(auth.RoleAdmin), secret, time.Hour)
	require.NoError(t, err)

	got, err := auth.ParseToken(token, secret)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	require.NoError(t, auth.RequireRole(got, auth.RoleAdmin))
}

func TestRequireRole(t *testing.T) {
	err := auth.RequireRole(somePrincipal(auth.RoleUser), auth.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperr.Authorization, apperr.KindOf(err))

	require.NoError(t, auth.RequireRole(somePrincipal(auth.RoleUser), auth.RoleUser))
}
