// Package notify отправляет пользователям уведомления о событиях обмена
// через Telegram. Уведомления — best effort: ошибка отправки логируется
// и никогда не влияет на исход операции.
package notify

import (
	"context"
	"time"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/features/accounts"
)

// ChatResolver отдаёт пользователя, чтобы узнать привязанный Telegram-чат.
type ChatResolver interface {
	GetByID(ctx context.Context, id int64) (*accounts.User, error)
}

// TelegramNotifier шлёт сообщения пользователям, привязавшим чат в профиле.
type TelegramNotifier struct {
	bot   *telego.Bot
	users ChatResolver
}

// NewTelegramNotifier создаёт нотификатор. Токен проверяется при первом
// обращении к API, а не здесь — сервер должен подниматься и без Telegram.
func NewTelegramNotifier(token string, users ChatResolver) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, users: users}, nil
}

// Send отправляет текст пользователю в отдельной горутине.
// Пользователи без привязанного чата молча пропускаются.
func (n *TelegramNotifier) Send(userID int64, text string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := n.users.GetByID(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).
				Warn("Не удалось найти получателя уведомления")
			return
		}
		if user.TelegramChatID == nil {
			return
		}

		_, err = n.bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: *user.TelegramChatID},
			Text:   text,
		})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).
				Warn("Не удалось отправить Telegram-уведомление")
			return
		}

		log.WithField("user_id", userID).Debug("Telegram-уведомление отправлено")
	}()
}
