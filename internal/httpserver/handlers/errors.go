// Package handlers — errors.go переводит доменные ошибки в HTTP-статусы.
// Внутренние детали (SQL, стеки) клиенту не утекают.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/common"
)

// writeError отдаёт клиенту статус и сообщение по типу доменной ошибки.
// ErrNotParticipant намеренно неотличим от «не найдено»: чужие обмены
// для вызывающего не существуют.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInsufficientCredits),
		errors.Is(err, common.ErrUsernameTaken),
		errors.Is(err, common.ErrInvalidCategory),
		errors.Is(err, common.ErrInvalidStatus),
		errors.Is(err, common.ErrSelfSwap),
		errors.Is(err, common.ErrSkillNotOwned):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, common.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, common.ErrSwapNotFound),
		errors.Is(err, common.ErrNotParticipant),
		errors.Is(err, common.ErrSkillNotFound),
		errors.Is(err, common.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "не найдено"})

	case errors.Is(err, common.ErrTxConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		log.WithError(err).Error("Необработанная ошибка в обработчике")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
	}
}

// badRequest — короткий ответ на некорректное тело запроса.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
