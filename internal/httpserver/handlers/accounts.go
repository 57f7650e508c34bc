// Package handlers — accounts.go обслуживает регистрацию, вход и профили.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/httpserver/middleware"
)

// AccountsHandler обслуживает эндпоинты пользователей.
type AccountsHandler struct {
	service *accounts.Service
}

func NewAccountsHandler(service *accounts.Service) *AccountsHandler {
	return &AccountsHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Register — POST /api/register
func (h *AccountsHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуются username и password")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: toUserDTO(user), Access: token})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login — POST /api/login
func (h *AccountsHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуются username и password")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: toUserDTO(user), Access: token})
}

// List — GET /api/users (read-only справочник)
func (h *AccountsHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	c.JSON(http.StatusOK, out)
}

// Get — GET /api/users/:id
func (h *AccountsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

// Me — GET /api/me (текущий пользователь)
func (h *AccountsHandler) Me(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	user, err := h.service.GetByID(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

type profileRequest struct {
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

// UpdateMe — PATCH /api/me (bio, location, привязка Telegram).
// Апдейт частичный: непереданные поля остаются прежними.
func (h *AccountsHandler) UpdateMe(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "некорректное тело запроса")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), callerID, accounts.ProfileUpdate{
		Bio:            req.Bio,
		Location:       req.Location,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}
