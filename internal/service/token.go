// Package service содержит TokenManager. Токены выпускает внешний провайдер
// идентификации, здесь они только проверяются.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/validation"
)

// TokenManager отвечает за выпуск и проверку JWT.
type TokenManager struct {
	accessSecret []byte
	accessTTL    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(accessSecret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret: []byte(accessSecret),
		accessTTL:    accessTTL,
	}
}

// GenerateAccess выпускает access токен. Используется в тестах и локальной разработке.
func (m *TokenManager) GenerateAccess(actor authz.Actor) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   actor.UserID.String(),
		"email": actor.Email,
		"role":  actor.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(m.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// ParseAccess проверяет подпись и срок действия и возвращает вызывающего.
// Email приводится к тому виду, в котором он хранится в кошельках.
func (m *TokenManager) ParseAccess(token string) (authz.Actor, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return authz.Actor{}, err
	}
	if !parsed.Valid {
		return authz.Actor{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Actor{}, jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return authz.Actor{}, jwt.ErrTokenInvalidClaims
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("token: некорректный sub: %w", err)
	}

	email, _ := claims["email"].(string)
	email = validation.NormalizeEmail(email)
	if email == "" {
		return authz.Actor{}, errors.New("token: нет email")
	}
	role, _ := claims["role"].(string)
	switch role {
	case authz.RoleStudent, authz.RoleProfessor, authz.RoleAdmin:
	default:
		return authz.Actor{}, fmt.Errorf("token: неизвестная роль %q", role)
	}

	return authz.Actor{UserID: userID, Email: email, Role: role}, nil
}
