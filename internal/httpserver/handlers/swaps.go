// Package handlers — swaps.go обслуживает запросы на обмен.
// Обработчик собирает вложенные DTO (requester_info, provider_info,
// skill_title) пакетными выборками — доменный слой отдаёт голые сущности.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
	"skillswap.ru/backend/internal/features/swaps"
	"skillswap.ru/backend/internal/httpserver/middleware"
)

// SwapsHandler обслуживает эндпоинты обменов.
type SwapsHandler struct {
	service  *swaps.Service
	accounts *accounts.Service
	skills   *skills.Service
}

func NewSwapsHandler(service *swaps.Service, accountsService *accounts.Service, skillsService *skills.Service) *SwapsHandler {
	return &SwapsHandler{service: service, accounts: accountsService, skills: skillsService}
}

type createSwapRequest struct {
	Provider int64  `json:"provider" binding:"required"`
	Skill    int64  `json:"skill" binding:"required"`
	Message  string `json:"message"`
}

// Create — POST /api/swaps
func (h *SwapsHandler) Create(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var req createSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуются provider и skill")
		return
	}

	sr, err := h.service.Create(c.Request.Context(), callerID, req.Provider, req.Skill, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	dto, err := h.composeOne(c.Request.Context(), sr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// List — GET /api/swaps (обмены текущего пользователя, свежие первыми)
func (h *SwapsHandler) List(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	list, err := h.service.ListForUser(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.compose(c.Request.Context(), list)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Get — GET /api/swaps/:id (только для стороны обмена)
func (h *SwapsHandler) Get(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	sr, err := h.service.GetForUser(c.Request.Context(), callerID, id)
	if err != nil {
		writeError(c, err)
		return
	}

	dto, err := h.composeOne(c.Request.Context(), sr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

type updateSwapRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus — PATCH /api/swaps/:id
// Перевод кредита происходит внутри сервиса при входе в ACCEPTED.
func (h *SwapsHandler) UpdateStatus(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "некорректный id")
		return
	}

	var req updateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "требуется status")
		return
	}

	sr, err := h.service.UpdateStatus(c.Request.Context(), callerID, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	dto, err := h.composeOne(c.Request.Context(), sr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// compose собирает DTO для списка обменов: стороны и навыки подтягиваются
// пакетно, по одному запросу на таблицу.
func (h *SwapsHandler) compose(ctx context.Context, list []*swaps.SwapRequest) ([]*SwapDTO, error) {
	userIDs := make([]int64, 0, len(list)*2)
	skillIDs := make([]int64, 0, len(list))
	seenUsers := make(map[int64]bool, len(list)*2)
	seenSkills := make(map[int64]bool, len(list))
	for _, sr := range list {
		for _, id := range []int64{sr.RequesterID, sr.ProviderID} {
			if !seenUsers[id] {
				seenUsers[id] = true
				userIDs = append(userIDs, id)
			}
		}
		if !seenSkills[sr.SkillID] {
			seenSkills[sr.SkillID] = true
			skillIDs = append(skillIDs, sr.SkillID)
		}
	}

	users, err := h.accounts.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[int64]*accounts.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	skillList, err := h.skills.GetByIDs(ctx, skillIDs)
	if err != nil {
		return nil, err
	}
	skillByID := make(map[int64]*skills.Skill, len(skillList))
	for _, s := range skillList {
		skillByID[s.ID] = s
	}

	out := make([]*SwapDTO, 0, len(list))
	for _, sr := range list {
		out = append(out, toSwapDTO(sr, userByID, skillByID))
	}
	return out, nil
}

func (h *SwapsHandler) composeOne(ctx context.Context, sr *swaps.SwapRequest) (*SwapDTO, error) {
	dtos, err := h.compose(ctx, []*swaps.SwapRequest{sr})
	if err != nil {
		return nil, err
	}
	return dtos[0], nil
}
