// Package handlers содержит HTTP-обработчики маркетплейса.
// dto.go описывает формы ответов API. DTO собираются здесь, на границе
// шлюза — доменные сущности не знают о сериализации.
// Имена полей сохраняют контракт существующего фронтенда: вложенные
// *_info-объекты рядом с «сырыми» ID внешних ключей.
package handlers

import (
	"time"

	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
	"skillswap.ru/backend/internal/features/swaps"
)

// UserDTO — публичное представление пользователя.
// Хеш пароля и привязка Telegram наружу не отдаются.
type UserDTO struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	KarmaCredits int64  `json:"karma_credits"`
}

// SkillDTO — представление навыка с вложенной информацией о владельце.
type SkillDTO struct {
	ID          int64     `json:"id"`
	User        int64     `json:"user"`
	UserInfo    *UserDTO  `json:"user_info,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// SwapDTO — представление запроса на обмен с вложенными сторонами
// и названием навыка.
type SwapDTO struct {
	ID            int64     `json:"id"`
	Requester     int64     `json:"requester"`
	RequesterInfo *UserDTO  `json:"requester_info,omitempty"`
	Provider      int64     `json:"provider"`
	ProviderInfo  *UserDTO  `json:"provider_info,omitempty"`
	Skill         int64     `json:"skill"`
	SkillTitle    string    `json:"skill_title,omitempty"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuthResponse — ответ register/login: пользователь плюс токен доступа.
type AuthResponse struct {
	User   *UserDTO `json:"user"`
	Access string   `json:"access"`
}

func toUserDTO(u *accounts.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Bio:          u.Bio,
		Location:     u.Location,
		KarmaCredits: u.KarmaCredits,
	}
}

func toSkillDTO(s *skills.Skill, owner *accounts.User) *SkillDTO {
	return &SkillDTO{
		ID:          s.ID,
		User:        s.UserID,
		UserInfo:    toUserDTO(owner),
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
		CreatedAt:   s.CreatedAt,
	}
}

func toSwapDTO(sr *swaps.SwapRequest, userByID map[int64]*accounts.User, skillByID map[int64]*skills.Skill) *SwapDTO {
	dto := &SwapDTO{
		ID:        sr.ID,
		Requester: sr.RequesterID,
		Provider:  sr.ProviderID,
		Skill:     sr.SkillID,
		Message:   sr.Message,
		Status:    sr.Status,
		CreatedAt: sr.CreatedAt,
	}
	dto.RequesterInfo = toUserDTO(userByID[sr.RequesterID])
	dto.ProviderInfo = toUserDTO(userByID[sr.ProviderID])
	if skill, ok := skillByID[sr.SkillID]; ok {
		dto.SkillTitle = skill.Title
	}
	return dto
}
