// Package skills — repository.go отвечает за операции с таблицей skills в БД.
package skills

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap.ru/backend/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет новое объявление о навыке.
func (r *Repository) Create(ctx context.Context, s *Skill) (*Skill, error) {
	query := `
		INSERT INTO skills (user_id, title, description, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, description, category, created_at
	`
	var created Skill
	err := r.db.QueryRow(ctx, query, s.UserID, s.Title, s.Description, s.Category).Scan(
		&created.ID, &created.UserID, &created.Title,
		&created.Description, &created.Category, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания навыка: %w", err)
	}
	return &created, nil
}

// GetByID: если не найден — common.ErrSkillNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Skill, error) {
	query := `
		SELECT id, user_id, title, description, category, created_at
		FROM skills WHERE id = $1
	`
	var s Skill
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &s.Category, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSkillNotFound
		}
		return nil, fmt.Errorf("ошибка чтения навыка (id=%d): %w", id, err)
	}
	return &s, nil
}

// List возвращает все навыки, самые свежие первыми.
func (r *Repository) List(ctx context.Context) ([]*Skill, error) {
	query := `
		SELECT id, user_id, title, description, category, created_at
		FROM skills
		ORDER BY created_at DESC
	`
	return r.querySkills(ctx, query)
}

// GetByIDs возвращает навыки по списку ID одним запросом.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, user_id, title, description, category, created_at
		FROM skills WHERE id = ANY($1)
	`
	return r.querySkills(ctx, query, ids)
}

// Update перезаписывает название, описание и категорию навыка.
func (r *Repository) Update(ctx context.Context, s *Skill) (*Skill, error) {
	query := `
		UPDATE skills
		SET title = $2, description = $3, category = $4
		WHERE id = $1
		RETURNING id, user_id, title, description, category, created_at
	`
	var updated Skill
	err := r.db.QueryRow(ctx, query, s.ID, s.Title, s.Description, s.Category).Scan(
		&updated.ID, &updated.UserID, &updated.Title,
		&updated.Description, &updated.Category, &updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSkillNotFound
		}
		return nil, fmt.Errorf("ошибка обновления навыка (id=%d): %w", s.ID, err)
	}
	return &updated, nil
}

// Delete удаляет объявление.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления навыка (id=%d): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrSkillNotFound
	}
	return nil
}

func (r *Repository) querySkills(ctx context.Context, query string, args ...interface{}) ([]*Skill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса навыков: %w", err)
	}
	defer rows.Close()

	var out []*Skill
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	return out, nil
}
