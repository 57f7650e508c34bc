package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger логирует каждый HTTP-запрос.
// Записывает: метод, путь, статус, длительность и ID пользователя (если есть).
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}
		if userID, ok := CallerID(c); ok {
			fields["user_id"] = userID
		}

		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Запрос завершился ошибкой сервера")
		case c.Writer.Status() >= 400:
			entry.Warn("Запрос отклонён")
		default:
			entry.Debug("Запрос обработан")
		}
	}
}
