// Package handlers — skills.go обслуживает каталог навыков.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
	"skillswap.ru/backend/internal/httpserver/middleware"
)

// SkillsHandler обслуживает эндпоинты каталога навыков.
type SkillsHandler struct {
	service  *skills.Service
	accounts *accounts.Service
}

func NewSkillsHandler(service *skills.Service, accountsService *accounts.Service) *SkillsHandler {
	return &SkillsHandler{service: service, accounts: accountsService}
}

type skillRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
}

// Create — POST /api/skills
func (h *SkillsHandler) Create(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуются title и category")
		return
	}

	skill, err := h.service.Create(c.Request.Context(), callerID, req.Title, req.Description, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}

	owner, err := h.accounts.GetByID(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSkillDTO(skill, owner))
}

// List — GET /api/skills (публичный, самые свежие первыми)
func (h *SkillsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.service.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	// Собираем владельцев одним запросом
	ownerIDs := make([]int64, 0, len(list))
	seen := make(map[int64]bool, len(list))
	for _, s := range list {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			ownerIDs = append(ownerIDs, s.UserID)
		}
	}
	owners, err := h.accounts.GetByIDs(ctx, ownerIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	ownerByID := make(map[int64]*accounts.User, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = u
	}

	out := make([]*SkillDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSkillDTO(s, ownerByID[s.UserID]))
	}
	c.JSON(http.StatusOK, out)
}

// Get — GET /api/skills/:id
func (h *SkillsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	skill, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	owner, err := h.accounts.GetByID(c.Request.Context(), skill.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSkillDTO(skill, owner))
}

// Update — PUT /api/skills/:id (только владелец)
func (h *SkillsHandler) Update(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуются title и category")
		return
	}

	skill, err := h.service.Update(c.Request.Context(), callerID, id, req.Title, req.Description, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}

	owner, err := h.accounts.GetByID(c.Request.Context(), skill.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSkillDTO(skill, owner))
}

// Delete — DELETE /api/skills/:id (только владелец)
func (h *SkillsHandler) Delete(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), callerID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
