package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

func TestRequireRole(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: RoleAdmin}
	student := Actor{UserID: uuid.New(), Email: "s@okalab.io", Role: RoleStudent}

	assert.NoError(t, RequireRole(admin, RoleAdmin))
	assert.True(t, apperror.IsForbidden(RequireRole(student, RoleAdmin)))
	assert.NoError(t, RequireRole(student, RoleProfessor, RoleStudent))
}

func TestRequireRole_Anonymous(t *testing.T) {
	err := RequireRole(Actor{Role: RoleAdmin}, RoleAdmin)

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRequireOwnership(t *testing.T) {
	owner := Actor{UserID: uuid.New(), Email: "owner@okalab.io", Role: RoleStudent}

	assert.NoError(t, RequireOwnership(owner, owner.UserID))
	assert.True(t, apperror.IsForbidden(RequireOwnership(owner, uuid.New())))
}

func TestRequireAdminOrOwner(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: RoleAdmin}
	other := Actor{UserID: uuid.New(), Email: "other@okalab.io", Role: RoleStudent}
	ownerID := uuid.New()

	assert.NoError(t, RequireAdminOrOwner(admin, ownerID))
	assert.True(t, apperror.IsForbidden(RequireAdminOrOwner(other, ownerID)))
}
