// Package swaps — repository.go выполняет операции с таблицей swap_requests
// и перевод кредитов между пользователями.
// Перевод и смена статуса выполняются в одной транзакции БД: либо произойдёт
// всё (списание, начисление, новый статус), либо ничего.
package swaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap.ru/backend/internal/common"
)

const swapColumns = `id, requester_id, provider_id, skill_id, message, status, created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет новый запрос на обмен со статусом PENDING.
func (r *Repository) Create(ctx context.Context, sr *SwapRequest) (*SwapRequest, error) {
	query := `
		INSERT INTO swap_requests (requester_id, provider_id, skill_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + swapColumns
	var created SwapRequest
	err := r.db.QueryRow(ctx, query,
		sr.RequesterID, sr.ProviderID, sr.SkillID, sr.Message, StatusPending,
	).Scan(swapScanTargets(&created)...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на обмен: %w", err)
	}
	return &created, nil
}

// GetByID: если не найден — common.ErrSwapNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`
	var sr SwapRequest
	err := r.db.QueryRow(ctx, query, id).Scan(swapScanTargets(&sr)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSwapNotFound
		}
		return nil, fmt.Errorf("ошибка чтения запроса (id=%d): %w", id, err)
	}
	return &sr, nil
}

// ListForParticipant возвращает запросы, где пользователь является
// инициатором или провайдером, самые свежие первыми.
func (r *Repository) ListForParticipant(ctx context.Context, userID int64) ([]*SwapRequest, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swap_requests
		WHERE requester_id = $1 OR provider_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса обменов: %w", err)
	}
	defer rows.Close()

	var out []*SwapRequest
	for rows.Next() {
		var sr SwapRequest
		if err := rows.Scan(swapScanTargets(&sr)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &sr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	return out, nil
}

// UpdateStatus записывает новый статус без каких-либо денежных эффектов.
// Используется для всех переходов, кроме входа в ACCEPTED.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) (*SwapRequest, error) {
	query := `
		UPDATE swap_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + swapColumns
	var sr SwapRequest
	err := r.db.QueryRow(ctx, query, id, status).Scan(swapScanTargets(&sr)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSwapNotFound
		}
		return nil, fmt.Errorf("ошибка обновления статуса (id=%d): %w", id, err)
	}
	return &sr, nil
}

// AcceptWithTransfer принимает запрос и переводит 1 кредит от инициатора
// к провайдеру в одной транзакции БД.
//
// Порядок внутри транзакции:
//  1. Блокируем строку запроса (FOR UPDATE) — сериализует конкурирующие
//     принятия одного и того же запроса.
//  2. Если запрос уже ACCEPTED — выходим без перевода (идемпотентность).
//  3. Блокируем строки обоих пользователей в порядке возрастания ID,
//     чтобы встречные принятия не взаимоблокировались.
//  4. Проверяем баланс инициатора; меньше 1 — откат без каких-либо изменений.
//  5. Списание, начисление, запись статуса, commit.
//
// При конфликте блокировок/сериализации возвращает common.ErrTxConflict —
// сервис повторяет операцию ограниченное число раз.
func (r *Repository) AcceptWithTransfer(ctx context.Context, id int64) (*SwapRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем запрос
	var sr SwapRequest
	err = tx.QueryRow(ctx,
		`SELECT `+swapColumns+` FROM swap_requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(swapScanTargets(&sr)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSwapNotFound
		}
		return nil, txError("чтение запроса", err)
	}

	// Повторное принятие — дубликат перевода не выполняем
	if sr.Status == StatusAccepted {
		if err := tx.Commit(ctx); err != nil {
			return nil, txError("commit", err)
		}
		return &sr, nil
	}

	// Блокируем балансы сторон в порядке возрастания ID
	firstID, secondID := sr.RequesterID, sr.ProviderID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}
	balances := make(map[int64]int64, 2)
	for _, userID := range []int64{firstID, secondID} {
		var credits int64
		err = tx.QueryRow(ctx,
			`SELECT karma_credits FROM users WHERE id = $1 FOR UPDATE`, userID,
		).Scan(&credits)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, common.ErrUserNotFound
			}
			return nil, txError("блокировка баланса", err)
		}
		balances[userID] = credits
	}

	// Проверка баланса инициатора — до каких-либо изменений
	if balances[sr.RequesterID] < 1 {
		return nil, common.ErrInsufficientCredits
	}

	// Списываем у инициатора
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET karma_credits = karma_credits - 1, updated_at = NOW()
		WHERE id = $1
	`, sr.RequesterID)
	if err != nil {
		return nil, txError("списание кредита", err)
	}

	// Начисляем провайдеру
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET karma_credits = karma_credits + 1, updated_at = NOW()
		WHERE id = $1
	`, sr.ProviderID)
	if err != nil {
		return nil, txError("начисление кредита", err)
	}

	// Фиксируем новый статус
	err = tx.QueryRow(ctx, `
		UPDATE swap_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+swapColumns, id, StatusAccepted,
	).Scan(swapScanTargets(&sr)...)
	if err != nil {
		return nil, txError("запись статуса", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, txError("commit", err)
	}
	return &sr, nil
}

// ExpirePending переводит протухшие PENDING-запросы в REJECTED.
// Кредиты при этом не двигаются. Возвращает число закрытых запросов.
func (r *Repository) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE swap_requests
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
	`, StatusRejected, StatusPending, olderThan)
	if err != nil {
		return 0, fmt.Errorf("ошибка закрытия протухших запросов: %w", err)
	}
	return tag.RowsAffected(), nil
}

// txError оборачивает ошибку шага транзакции. Конфликт сериализации (40001)
// и deadlock (40P01) превращаются в common.ErrTxConflict, чтобы сервис мог
// повторить попытку.
func txError(step string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%s: %w", step, common.ErrTxConflict)
	}
	return fmt.Errorf("%s: %w", step, err)
}

// swapScanTargets возвращает указатели на поля в порядке swapColumns.
func swapScanTargets(sr *SwapRequest) []interface{} {
	return []interface{}{
		&sr.ID, &sr.RequesterID, &sr.ProviderID, &sr.SkillID,
		&sr.Message, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt,
	}
}
