// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// миддлвари и собирает всё в один HTTP-роутер.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/config"
	"skillswap.ru/backend/internal/db/postgres"
	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
	"skillswap.ru/backend/internal/features/swaps"
	"skillswap.ru/backend/internal/httpserver"
	"skillswap.ru/backend/internal/httpserver/handlers"
	"skillswap.ru/backend/internal/httpserver/middleware"
	"skillswap.ru/backend/internal/jobs"
	"skillswap.ru/backend/internal/notify"
)

// App содержит все компоненты приложения.
type App struct {
	Router      *gin.Engine
	Scheduler   *jobs.Scheduler
	DB          *pgxpool.Pool
	RateLimiter *middleware.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Репозитории ===
	accountRepo := accounts.NewRepository(pool)
	skillRepo := skills.NewRepository(pool)
	swapRepo := swaps.NewRepository(pool)

	// === 3. Сервисы ===
	tokens := accounts.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	accountService := accounts.NewService(accountRepo, tokens, cfg)
	skillService := skills.NewService(skillRepo)

	// Уведомления опциональны: без токена бота работаем с заглушкой
	var notifier swaps.Notifier = swaps.NopNotifier{}
	if cfg.FeatureNotificationsEnabled && cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, accountService)
		if err != nil {
			log.WithError(err).Warn("Telegram-уведомления недоступны, продолжаем без них")
		} else {
			notifier = tg
			log.Info("Telegram-уведомления включены")
		}
	}

	swapService := swaps.NewService(swapRepo, accountService, skillService, notifier, cfg)

	// === 4. Обработчики ===
	accountsHandler := handlers.NewAccountsHandler(accountService)
	skillsHandler := handlers.NewSkillsHandler(skillService, accountService)
	swapsHandler := handlers.NewSwapsHandler(swapService, accountService, skillService)

	// === 5. Миддлвари и роутер ===
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := httpserver.NewRouter(cfg, tokens, limiter, accountsHandler, skillsHandler, swapsHandler)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(swapService, cfg)

	return &App{
		Router:      router,
		Scheduler:   scheduler,
		DB:          pool,
		RateLimiter: limiter,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Skills},
		{3, migration003SwapRequests},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(150) NOT NULL,
    email VARCHAR(255) DEFAULT '',
    password_hash VARCHAR(255) NOT NULL,
    bio TEXT DEFAULT '',
    location VARCHAR(100) DEFAULT '',
    karma_credits INTEGER NOT NULL DEFAULT 5 CHECK (karma_credits >= 0),
    telegram_chat_id BIGINT,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username));
`

var migration002Skills = `
CREATE TABLE IF NOT EXISTS skills (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    description TEXT DEFAULT '',
    category VARCHAR(10) NOT NULL CHECK (category IN ('TEACH', 'LEARN')),
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_skills_user_id ON skills(user_id);
CREATE INDEX IF NOT EXISTS idx_skills_created_at ON skills(created_at DESC);
`

var migration003SwapRequests = `
CREATE TABLE IF NOT EXISTS swap_requests (
    id BIGSERIAL PRIMARY KEY,
    requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    provider_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    skill_id BIGINT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
    message TEXT DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING'
        CHECK (status IN ('PENDING', 'ACCEPTED', 'COMPLETED', 'REJECTED')),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_swap_requests_requester ON swap_requests(requester_id);
CREATE INDEX IF NOT EXISTS idx_swap_requests_provider ON swap_requests(provider_id);
CREATE INDEX IF NOT EXISTS idx_swap_requests_created_at ON swap_requests(created_at DESC);
`
