// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях маркетплейса.
// Эти ошибки позволяют HTTP-обработчикам различать типы проблем
// и возвращать клиенту корректный статус и понятное сообщение.
package common

import "errors"

// Ошибки аккаунтов (регистрация, вход, профиль)
var (
	// ErrUsernameTaken — имя пользователя уже занято
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
	// ErrInvalidCredentials — неверное имя пользователя или пароль
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки каталога навыков
var (
	// ErrSkillNotFound — навык не найден
	ErrSkillNotFound = errors.New("навык не найден")
	// ErrInvalidCategory — категория не TEACH и не LEARN
	ErrInvalidCategory = errors.New("категория должна быть TEACH или LEARN")
	// ErrNotOwner — попытка изменить чужой навык
	ErrNotOwner = errors.New("навык принадлежит другому пользователю")
)

// Ошибки обменов (swap-запросы и перевод кредитов)
var (
	// ErrInsufficientCredits — у инициатора меньше 1 кармического кредита
	ErrInsufficientCredits = errors.New("недостаточно кармических кредитов")
	// ErrSwapNotFound — запрос на обмен не найден
	ErrSwapNotFound = errors.New("запрос на обмен не найден")
	// ErrNotParticipant — вызывающий не является стороной обмена.
	// Наружу отдаётся так же, как ErrSwapNotFound: чужие обмены невидимы.
	ErrNotParticipant = errors.New("вы не являетесь стороной этого обмена")
	// ErrInvalidStatus — статус не входит в список допустимых значений
	ErrInvalidStatus = errors.New("недопустимый статус запроса")
	// ErrSelfSwap — попытка создать обмен с самим собой
	ErrSelfSwap = errors.New("нельзя создать обмен с самим собой")
	// ErrSkillNotOwned — навык не принадлежит указанному провайдеру
	ErrSkillNotOwned = errors.New("навык не принадлежит этому пользователю")
	// ErrTxConflict — конфликт транзакций не разрешился за отведённые попытки
	ErrTxConflict = errors.New("конфликт одновременных операций, попробуйте ещё раз")
)
