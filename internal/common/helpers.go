// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование кредитов и времени.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeCredits возвращает правильную форму слова «кредит» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "кредит" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "кредита" (2, 3, 4, 22, ...)
//   - Остальные случаи → "кредитов" (0, 5-20, 25-30, 100, ...)
func PluralizeCredits(n int64) string {
	// Берём абсолютное значение для отрицательных чисел
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "кредит"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "кредита"
	}

	return "кредитов"
}

// FormatCredits форматирует баланс в читабельную строку.
// Пример: FormatCredits(5) → "5 кредитов"
func FormatCredits(credits int64) string {
	return fmt.Sprintf("%d %s", credits, PluralizeCredits(credits))
}

// FormatDateTime форматирует время для сообщений пользователю.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
