package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respond отправляет JSON-ответ с едиными заголовками.
// Ответы API не должны оседать в промежуточных кешах: актуальность
// лидерборда контролирует серверный кеш, а не клиентский.
func respond(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// NotFoundHandler обрабатывает запросы к несуществующим маршрутам
func NotFoundHandler(c *gin.Context) {
	respond(c, http.StatusNotFound, gin.H{"error": "Not Found"})
}
