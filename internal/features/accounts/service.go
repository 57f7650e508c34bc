// Package accounts — service.go содержит бизнес-логику аккаунтов:
// регистрацию с выдачей токена, вход по паролю и работу с профилем.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/common"
	"skillswap.ru/backend/internal/config"
)

// Store описывает операции хранилища, нужные сервису аккаунтов.
// Реализуется *Repository; в тестах подменяется in-memory фейком.
type Store interface {
	Create(ctx context.Context, u *User, startingCredits int) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*User, error)
}

// Service управляет пользователями маркетплейса.
type Service struct {
	store  Store
	tokens *TokenManager
	cfg    *config.Config
}

// NewService создаёт новый сервис аккаунтов.
func NewService(store Store, tokens *TokenManager, cfg *config.Config) *Service {
	return &Service{store: store, tokens: tokens, cfg: cfg}
}

// Register создаёт нового пользователя и сразу выдаёт токен доступа,
// чтобы фронтенд мог залогинить его без отдельного запроса.
//
// Ошибки: common.ErrUsernameTaken, если имя занято.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("имя пользователя и пароль обязательны")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user, err := s.store.Create(ctx, &User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}, s.cfg.StartingCredits)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка выпуска токена: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Новый пользователь зарегистрирован")

	return user, token, nil
}

// Login проверяет пароль и выдаёт токен доступа.
// Для несуществующего пользователя и для неверного пароля возвращается
// одна и та же ошибка — по ответу нельзя перечислять имена.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка выпуска токена: %w", err)
	}

	log.WithField("user_id", user.ID).Info("Пользователь вошёл в систему")
	return user, token, nil
}

// GetByID возвращает пользователя по ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// GetByIDs возвращает пользователей по списку ID (для сборки DTO).
func (s *Service) GetByIDs(ctx context.Context, ids []int64) ([]*User, error) {
	return s.store.GetByIDs(ctx, ids)
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// UpdateProfile обновляет bio/location/привязку Telegram.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*User, error) {
	return s.store.UpdateProfile(ctx, userID, p)
}
