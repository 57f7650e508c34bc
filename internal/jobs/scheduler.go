// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневное закрытие протухших
// PENDING-запросов на обмен.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"skillswap.ru/backend/internal/config"
	"skillswap.ru/backend/internal/features/swaps"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron        *cron.Cron
	swapService *swaps.Service
	cfg         *config.Config
}

// NewScheduler создаёт планировщик задач в часовом поясе из конфига.
func NewScheduler(swapService *swaps.Service, cfg *config.Config) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC", cfg.AppTimezone)
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:        c,
		swapService: swapService,
		cfg:         cfg,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	if s.cfg.FeatureSwapExpiryEnabled {
		// Ежедневно в 03:00 закрываем протухшие PENDING-запросы
		s.cron.AddFunc("0 3 * * *", func() {
			log.Info("[CRON] Закрытие протухших запросов на обмен")
			n, err := s.swapService.ExpireStalePending(ctx)
			if err != nil {
				log.WithError(err).Error("[CRON] Ошибка закрытия запросов")
				return
			}
			if n > 0 {
				log.Infof("[CRON] Закрыто запросов: %d", n)
			}
		})
	}

	s.cron.Start()
	log.Infof("Планировщик задач запущен (%s)", s.cfg.AppTimezone)
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
