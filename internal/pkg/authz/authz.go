package authz

import (
	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// Роли, которые выдаёт внешний провайдер идентификации.
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

// Actor описывает вызывающего пользователя.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAuthenticated проверяет, что вызов сделан от имени пользователя.
func RequireAuthenticated(a Actor) error {
	if a.UserID == uuid.Nil || a.Email == "" {
		return apperror.ErrUnauthorized
	}
	return nil
}

// RequireRole пропускает пользователя, если его роль входит в список.
func RequireRole(a Actor, roles ...string) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	for _, role := range roles {
		if a.Role == role {
			return nil
		}
	}
	return apperror.ErrForbidden
}

// RequireOwnership пропускает только владельца ресурса.
func RequireOwnership(a Actor, ownerID uuid.UUID) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.UserID != ownerID {
		return apperror.ErrForbidden
	}
	return nil
}

// RequireAdminOrOwner пропускает администратора или владельца ресурса.
func RequireAdminOrOwner(a Actor, ownerID uuid.UUID) error {
	if a.IsAdmin() {
		return RequireAuthenticated(a)
	}
	return RequireOwnership(a, ownerID)
}
