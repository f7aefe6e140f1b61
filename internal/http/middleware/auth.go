package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
)

// Context ключи для gin.Context.
const (
	ContextActorKey  = "actor"
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AccessTokenParser проверяет access токен и возвращает вызывающего.
type AccessTokenParser interface {
	ParseAccess(token string) (authz.Actor, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			c.Abort()
			return
		}

		actor, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "токен невалиден")
			c.Abort()
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// SetActor кладёт вызывающего в контекст запроса.
func SetActor(c *gin.Context, actor authz.Actor) {
	c.Set(ContextActorKey, actor)
	c.Set(ContextUserIDKey, actor.UserID)
	c.Set(ContextRoleKey, actor.Role)
}

// RequireRole пропускает только указанные роли.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := c.Get(ContextActorKey)
		a, _ := actor.(authz.Actor)
		if err := authz.RequireRole(a, roles...); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
