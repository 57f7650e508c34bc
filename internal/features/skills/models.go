// Package skills управляет каталогом навыков: объявлениями «могу научить»
// и «хочу научиться».
// models.go описывает структуры данных для работы с таблицей skills.
package skills

import "time"

// Категории навыка. TEACH — готов научить, LEARN — хочу научиться.
const (
	CategoryTeach = "TEACH"
	CategoryLearn = "LEARN"
)

// Skill представляет объявление о навыке.
type Skill struct {
	ID          int64     `db:"id"`          // Автоинкрементный ID
	UserID      int64     `db:"user_id"`     // Владелец объявления
	Title       string    `db:"title"`       // Название (до 200 символов)
	Description string    `db:"description"` // Подробное описание
	Category    string    `db:"category"`    // TEACH или LEARN
	CreatedAt   time.Time `db:"created_at"`
}

// ValidCategory проверяет, что категория входит в допустимый список.
func ValidCategory(category string) bool {
	return category == CategoryTeach || category == CategoryLearn
}
