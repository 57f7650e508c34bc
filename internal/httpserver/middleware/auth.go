// Package middleware содержит промежуточные обработчики gin: аутентификацию
// по JWT, логирование запросов, rate-limiting и восстановление после паники.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillswap.ru/backend/internal/features/accounts"
)

// Ключ в контексте gin, под которым лежит ID аутентифицированного пользователя.
const callerIDKey = "caller_id"

// Auth проверяет заголовок Authorization: Bearer <token> и кладёт ID
// пользователя в контекст запроса. Без валидного токена запрос не проходит.
func Auth(tokens *accounts.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		userID, err := tokens.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен недействителен"})
			return
		}

		c.Set(callerIDKey, userID)
		c.Next()
	}
}

// CallerID возвращает ID аутентифицированного пользователя из контекста.
// Второе значение false, если запрос прошёл без Auth-миддлвари.
func CallerID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(callerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
