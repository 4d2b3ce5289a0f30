package sweeper

import (
	"context"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/pkg/metrics"
)

// Sweeper фоновый воркер перевода просроченных подтверждений в owner_timed_out
// Переход выполняет storage-слой атомарно, поэтому воркер безопасен при
// нескольких инстансах сервиса: каждую запись закрывает ровно один из них
type Sweeper struct {
	service   ConfirmationService
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int
	logger    Logger
}

// New создает новый экземпляр Sweeper
func New(service ConfirmationService, m *metrics.Metrics, interval time.Duration, batchSize int, logger Logger) *Sweeper {
	return &Sweeper{
		service:   service,
		metrics:   m,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run запускает цикл обхода и блокируется до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, interval=%s, batch size=%d", s.interval, s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep выгребает просроченные подтверждения пачками до опустошения
func (s *Sweeper) sweep(ctx context.Context) {
	total := 0

	for {
		count, err := s.service.SweepExpired(ctx, s.batchSize)
		if err != nil {
			// Ошибка не фатальна: следующий тик попробует снова
			s.logger.Error("Sweeper: sweep failed: %v", err)
			if s.metrics != nil {
				s.metrics.SweepRunsTotal.WithLabelValues("error").Inc()
				s.metrics.SweepErrorsTotal.Inc()
			}
			return
		}

		total += count
		if s.metrics != nil {
			s.metrics.SweepTimedOutTotal.Add(float64(count))
		}

		// Полная пачка означает, что просроченных может быть больше
		if count < s.batchSize {
			break
		}
	}

	if s.metrics != nil {
		s.metrics.SweepRunsTotal.WithLabelValues("success").Inc()
	}
	if total > 0 {
		s.logger.Info("Sweeper: resolved %d expired confirmations", total)
	}
}
