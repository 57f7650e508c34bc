// Package skills — service.go содержит бизнес-логику каталога навыков.
// Валидация категории и проверка владения при изменении/удалении.
package skills

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/common"
)

// Store описывает операции хранилища, нужные сервису навыков.
type Store interface {
	Create(ctx context.Context, s *Skill) (*Skill, error)
	GetByID(ctx context.Context, id int64) (*Skill, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Skill, error)
	List(ctx context.Context) ([]*Skill, error)
	Update(ctx context.Context, s *Skill) (*Skill, error)
	Delete(ctx context.Context, id int64) error
}

// Service управляет каталогом навыков.
type Service struct {
	store Store
}

// NewService создаёт новый сервис каталога.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create публикует новое объявление от имени callerID.
func (s *Service) Create(ctx context.Context, callerID int64, title, description, category string) (*Skill, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("название навыка обязательно")
	}
	if len(title) > 200 {
		return nil, fmt.Errorf("название слишком длинное (максимум 200 символов)")
	}
	if !ValidCategory(category) {
		return nil, common.ErrInvalidCategory
	}

	skill, err := s.store.Create(ctx, &Skill{
		UserID:      callerID,
		Title:       title,
		Description: description,
		Category:    category,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"skill_id": skill.ID,
		"user_id":  callerID,
		"category": category,
	}).Info("Опубликован новый навык")

	return skill, nil
}

// List возвращает все навыки, самые свежие первыми.
func (s *Service) List(ctx context.Context) ([]*Skill, error) {
	return s.store.List(ctx)
}

// GetByID возвращает навык по ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Skill, error) {
	return s.store.GetByID(ctx, id)
}

// GetByIDs возвращает навыки по списку ID (для сборки DTO).
func (s *Service) GetByIDs(ctx context.Context, ids []int64) ([]*Skill, error) {
	return s.store.GetByIDs(ctx, ids)
}

// Update изменяет объявление. Разрешено только владельцу.
func (s *Service) Update(ctx context.Context, callerID, skillID int64, title, description, category string) (*Skill, error) {
	existing, err := s.store.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, common.ErrNotOwner
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("название навыка обязательно")
	}
	if len(title) > 200 {
		return nil, fmt.Errorf("название слишком длинное (максимум 200 символов)")
	}
	if !ValidCategory(category) {
		return nil, common.ErrInvalidCategory
	}

	existing.Title = title
	existing.Description = description
	existing.Category = category
	return s.store.Update(ctx, existing)
}

// Delete удаляет объявление. Разрешено только владельцу.
func (s *Service) Delete(ctx context.Context, callerID, skillID int64) error {
	existing, err := s.store.GetByID(ctx, skillID)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return common.ErrNotOwner
	}
	return s.store.Delete(ctx, skillID)
}
