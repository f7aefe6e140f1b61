package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/pkg/authz"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	actor := authz.Actor{UserID: uuid.New(), Email: "alice@okalab.io", Role: authz.RoleStudent}

	token, err := m.GenerateAccess(actor)
	require.NoError(t, err)

	got, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenManager_NormalizesEmail(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	actor := authz.Actor{UserID: uuid.New(), Email: " Alice@Okalab.IO ", Role: authz.RoleStudent}

	token, err := m.GenerateAccess(actor)
	require.NoError(t, err)

	got, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@okalab.io", got.Email)
	assert.Equal(t, actor.UserID, got.UserID)
}

func TestTokenManager_RejectsInvalid(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	actor := authz.Actor{UserID: uuid.New(), Email: "alice@okalab.io", Role: authz.RoleAdmin}

	other, err := NewTokenManager("other-secret", time.Minute).GenerateAccess(actor)
	require.NoError(t, err)
	_, err = m.ParseAccess(other)
	assert.Error(t, err, "чужая подпись")

	expired, err := NewTokenManager("test-secret", -time.Minute).GenerateAccess(actor)
	require.NoError(t, err)
	_, err = m.ParseAccess(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	unknownRole, err := m.GenerateAccess(authz.Actor{UserID: uuid.New(), Email: "x@okalab.io", Role: "root"})
	require.NoError(t, err)
	_, err = m.ParseAccess(unknownRole)
	assert.Error(t, err)

	noEmail, err := m.GenerateAccess(authz.Actor{UserID: uuid.New(), Role: authz.RoleStudent})
	require.NoError(t, err)
	_, err = m.ParseAccess(noEmail)
	assert.Error(t, err)

	_, err = m.ParseAccess("garbage")
	assert.Error(t, err)
}
