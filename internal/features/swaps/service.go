// Package swaps — service.go содержит бизнес-логику жизненного цикла обмена:
// валидацию при создании, явную проверку авторизации и машину статусов
// с охраняемым входом в ACCEPTED.
package swaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/common"
	"skillswap.ru/backend/internal/config"
	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
)

// Store описывает операции хранилища, нужные движку обменов.
// Реализуется *Repository; в тестах подменяется in-memory фейком,
// который обязан сохранять тот же контракт атомарности AcceptWithTransfer.
type Store interface {
	Create(ctx context.Context, sr *SwapRequest) (*SwapRequest, error)
	GetByID(ctx context.Context, id int64) (*SwapRequest, error)
	ListForParticipant(ctx context.Context, userID int64) ([]*SwapRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*SwapRequest, error)
	AcceptWithTransfer(ctx context.Context, id int64) (*SwapRequest, error)
	ExpirePending(ctx context.Context, olderThan time.Time) (int64, error)
}

// UserDirectory — минимальный доступ к пользователям (проверка существования).
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*accounts.User, error)
}

// SkillCatalog — минимальный доступ к каталогу навыков.
type SkillCatalog interface {
	GetByID(ctx context.Context, id int64) (*skills.Skill, error)
}

// Notifier отправляет пользователю уведомление о событии обмена.
// Реализация не должна блокировать вызывающего и никогда не роняет операцию.
type Notifier interface {
	Send(userID int64, text string)
}

// NopNotifier — заглушка, когда уведомления выключены.
type NopNotifier struct{}

func (NopNotifier) Send(int64, string) {}

// Service — движок обменов.
type Service struct {
	store    Store
	users    UserDirectory
	catalog  SkillCatalog
	notifier Notifier
	cfg      *config.Config
}

// NewService создаёт движок обменов.
func NewService(store Store, users UserDirectory, catalog SkillCatalog, notifier Notifier, cfg *config.Config) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{store: store, users: users, catalog: catalog, notifier: notifier, cfg: cfg}
}

// Create создаёт запрос на обмен от имени callerID (он становится инициатором).
//
// Проверки:
//   - провайдер существует;
//   - навык существует и принадлежит провайдеру;
//   - нельзя обмениваться с самим собой.
//
// Денежных эффектов нет — кредит двинется только при принятии.
func (s *Service) Create(ctx context.Context, callerID, providerID, skillID int64, message string) (*SwapRequest, error) {
	if callerID == providerID {
		return nil, common.ErrSelfSwap
	}

	if _, err := s.users.GetByID(ctx, providerID); err != nil {
		return nil, err
	}

	skill, err := s.catalog.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if skill.UserID != providerID {
		return nil, common.ErrSkillNotOwned
	}

	if message == "" {
		message = DefaultMessage
	}

	created, err := s.store.Create(ctx, &SwapRequest{
		RequesterID: callerID,
		ProviderID:  providerID,
		SkillID:     skillID,
		Message:     message,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"swap_id":   created.ID,
		"requester": callerID,
		"provider":  providerID,
		"skill_id":  skillID,
	}).Info("Создан запрос на обмен")

	s.notifier.Send(providerID,
		fmt.Sprintf("Новый запрос на обмен по навыку «%s» от %s. Зайдите во входящие, чтобы ответить.",
			skill.Title, common.FormatDateTime(created.CreatedAt)))

	return created, nil
}

// ListForUser возвращает обмены, в которых пользователь участвует,
// самые свежие первыми.
func (s *Service) ListForUser(ctx context.Context, callerID int64) ([]*SwapRequest, error) {
	return s.store.ListForParticipant(ctx, callerID)
}

// GetForUser возвращает один обмен, если вызывающий — его сторона.
// Для чужого обмена возвращается ErrNotParticipant; наружу обработчики
// отдают его неотличимо от «не найдено».
func (s *Service) GetForUser(ctx context.Context, callerID, swapID int64) (*SwapRequest, error) {
	sr, err := s.store.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !sr.IsParticipant(callerID) {
		return nil, common.ErrNotParticipant
	}
	return sr, nil
}

// UpdateStatus переводит запрос в новый статус.
//
// Ядро машины статусов: перевод кредита выполняется тогда и только тогда,
// когда newStatus == ACCEPTED и запрос ещё не ACCEPTED. Любой другой статус
// (включая повторный ACCEPTED) записывается как есть, без денежных эффектов.
// Обратные переходы не запрещаются — поведение унаследовано и зафиксировано.
func (s *Service) UpdateStatus(ctx context.Context, callerID, swapID int64, newStatus string) (*SwapRequest, error) {
	if !ValidStatus(newStatus) {
		return nil, common.ErrInvalidStatus
	}

	// Явная проверка авторизации до каких-либо записей
	sr, err := s.GetForUser(ctx, callerID, swapID)
	if err != nil {
		return nil, err
	}

	if newStatus == StatusAccepted && sr.Status != StatusAccepted {
		updated, err := s.acceptWithRetry(ctx, swapID)
		if err != nil {
			return nil, err
		}

		log.WithFields(log.Fields{
			"swap_id":   swapID,
			"requester": updated.RequesterID,
			"provider":  updated.ProviderID,
		}).Info("Обмен принят, кредит переведён")

		text := "Ваш запрос на обмен принят! С баланса списан 1 кармический кредит."
		if requester, rerr := s.users.GetByID(ctx, updated.RequesterID); rerr == nil {
			text = fmt.Sprintf("Ваш запрос на обмен принят! С баланса списан 1 кармический кредит, осталось %s.",
				common.FormatCredits(requester.KarmaCredits))
		}
		s.notifier.Send(updated.RequesterID, text)
		return updated, nil
	}

	updated, err := s.store.UpdateStatus(ctx, swapID, newStatus)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"swap_id": swapID,
		"status":  newStatus,
	}).Info("Статус обмена обновлён")

	if newStatus == StatusRejected && callerID == updated.ProviderID {
		s.notifier.Send(updated.RequesterID, "Ваш запрос на обмен отклонён.")
	}
	return updated, nil
}

// ExpireStalePending закрывает PENDING-запросы старше настроенного срока.
// Вызывается планировщиком; кредиты не двигаются.
func (s *Service) ExpireStalePending(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.SwapPendingTTLDays)
	return s.store.ExpirePending(ctx, cutoff)
}

// acceptWithRetry повторяет транзакцию принятия при конфликте блокировок.
// Число попыток ограничено конфигом; ErrInsufficientCredits не повторяется —
// это окончательный ответ, а не гонка.
func (s *Service) acceptWithRetry(ctx context.Context, swapID int64) (*SwapRequest, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.SwapAcceptRetries; attempt++ {
		updated, err := s.store.AcceptWithTransfer(ctx, swapID)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, common.ErrTxConflict) {
			return nil, err
		}

		lastErr = err
		log.WithFields(log.Fields{
			"swap_id": swapID,
			"attempt": attempt,
		}).Warn("Конфликт транзакции при принятии обмена, повторяем")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return nil, lastErr
}
