package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/http/middleware"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/pkg/pagination"
)

// CurrentActor извлекает вызывающего из Gin context.
// Без AuthMiddleware возвращается пустой Actor, use case ответит UNAUTHORIZED.
func CurrentActor(c *gin.Context) authz.Actor {
	raw, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return authz.Actor{}
	}
	actor, _ := raw.(authz.Actor)
	return actor
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, "параметр "+paramName+" должен быть валидным UUID")
	}
	return parsed, nil
}

// BindJSON читает тело запроса. Пустое тело допустимо для запросов без обязательных полей.
func BindJSON(c *gin.Context, req interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса")
	}
	return nil
}

// ParseIntQuery safely reads an integer query parameter with a fallback value
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination extracts limit and offset from query parameters with defaults
func GetPagination(c *gin.Context) (limit, offset int) {
	return pagination.Normalize(ParseIntQuery(c, "limit", 0), ParseIntQuery(c, "offset", 0))
}
