// Package accounts управляет пользователями маркетплейса: регистрацией,
// входом по паролю и профилем.
// models.go описывает структуры данных для работы с таблицей users.
package accounts

import "time"

// User представляет пользователя маркетплейса в базе данных.
type User struct {
	ID             int64     `db:"id"`               // Автоинкрементный ID
	Username       string    `db:"username"`         // Уникальное имя пользователя
	Email          string    `db:"email"`            // Email (может быть пустым)
	PasswordHash   string    `db:"password_hash"`    // Argon2id-хеш пароля
	Bio            string    `db:"bio"`              // О себе
	Location       string    `db:"location"`         // Город/регион
	KarmaCredits   int64     `db:"karma_credits"`    // Баланс кармических кредитов (старт — 5)
	TelegramChatID *int64    `db:"telegram_chat_id"` // Чат для уведомлений (nil — не привязан)
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ProfileUpdate содержит поля профиля, которые пользователь может менять сам.
// nil означает «поле в запросе не передано, оставить как есть».
// Баланс кредитов сюда не входит — им распоряжается только движок обменов.
type ProfileUpdate struct {
	Bio            *string
	Location       *string
	TelegramChatID *int64
}
