// Package swaps реализует ядро маркетплейса: жизненный цикл запроса на обмен
// и атомарный перевод кармического кредита при его принятии.
// models.go описывает структуры данных для работы с таблицей swap_requests.
package swaps

import "time"

// Статусы запроса на обмен.
// Запрос создаётся в PENDING; вход в ACCEPTED охраняется проверкой баланса
// и переводом кредита. Остальные переходы записываются как есть.
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusCompleted = "COMPLETED"
	StatusRejected  = "REJECTED"
)

// DefaultMessage — сообщение по умолчанию при создании запроса.
// Текст исторический, его показывает существующий фронтенд.
const DefaultMessage = "Hello! I'd like to swap skills with you."

// SwapRequest представляет запрос на обмен навыками между двумя пользователями.
// Requester платит 1 кредит при принятии, Provider его получает.
type SwapRequest struct {
	ID          int64     `db:"id"`           // Автоинкрементный ID
	RequesterID int64     `db:"requester_id"` // Инициатор обмена
	ProviderID  int64     `db:"provider_id"`  // Владелец навыка
	SkillID     int64     `db:"skill_id"`     // Навык, о котором идёт речь
	Message     string    `db:"message"`      // Сопроводительное сообщение
	Status      string    `db:"status"`       // PENDING / ACCEPTED / COMPLETED / REJECTED
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ValidStatus проверяет, что статус входит в допустимый список.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// IsParticipant проверяет, является ли пользователь стороной обмена.
// Только стороны видят запрос и могут менять его статус.
func (sr *SwapRequest) IsParticipant(userID int64) bool {
	return sr.RequesterID == userID || sr.ProviderID == userID
}
