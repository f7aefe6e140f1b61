package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/http/response"
)

// ErrorHandler отвечает по последней ошибке из c.Errors, если хэндлер
// сам ничего не записал. Внутренние ошибки маскируются в response.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}
