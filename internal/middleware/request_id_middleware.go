package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader — заголовок, в котором идентификатор запроса приходит
// от клиента или прокси и возвращается в ответе
const RequestIDHeader = "X-Request-ID"

// RequestIDKey — ключ идентификатора запроса в контексте Gin
const RequestIDKey = "request_id"

// RequestID проставляет каждому запросу уникальный идентификатор для
// корреляции записей в логах. Уже присланный клиентом идентификатор
// сохраняется как есть.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
