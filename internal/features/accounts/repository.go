// Package accounts — repository.go отвечает за все операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap.ru/backend/internal/common"
)

const userColumns = `id, username, email, password_hash, bio, location,
	       karma_credits, telegram_chat_id, created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет нового пользователя со стартовым балансом кредитов.
// Уникальность username обеспечивает индекс: на конфликте возвращаем
// common.ErrUsernameTaken (SQLSTATE 23505).
func (r *Repository) Create(ctx context.Context, u *User, startingCredits int) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, bio, location, karma_credits)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	var created User
	err := r.db.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Bio, u.Location, startingCredits,
	).Scan(scanTargets(&created)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return &created, nil
}

// GetByID: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(scanTargets(&u)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (id=%d): %w", id, err)
	}
	return &u, nil
}

// GetByUsername ищет пользователя без учёта регистра.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	var u User
	err := r.db.QueryRow(ctx, query, username).Scan(scanTargets(&u)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (username=%s): %w", username, err)
	}
	return &u, nil
}

// GetByIDs возвращает пользователей по списку ID одним запросом.
// Используется обработчиками для сборки вложенных DTO (requester_info и т.п.).
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	return r.queryUsers(ctx, query, ids)
}

// List возвращает всех пользователей (read-only справочник).
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.queryUsers(ctx, query)
}

// UpdateProfile обновляет поля профиля, доступные самому пользователю.
// Непереданные поля (nil) не трогаются: апдейт частичный.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*User, error) {
	query := `
		UPDATE users
		SET bio = COALESCE($2, bio),
		    location = COALESCE($3, location),
		    telegram_chat_id = COALESCE($4, telegram_chat_id),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	var u User
	err := r.db.QueryRow(ctx, query, userID, p.Bio, p.Location, p.TelegramChatID).Scan(scanTargets(&u)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка обновления профиля (id=%d): %w", userID, err)
	}
	return &u, nil
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(scanTargets(&u)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	return out, nil
}

// scanTargets возвращает указатели на поля в порядке userColumns.
func scanTargets(u *User) []interface{} {
	return []interface{}{
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.Location,
		&u.KarmaCredits, &u.TelegramChatID, &u.CreatedAt, &u.UpdatedAt,
	}
}
