package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	settingsRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/settings"
)

// DefaultCacheTTL срок жизни кэша настроек
// Настройки перечитываются из БД с коротким TTL, чтобы административные
// изменения применялись без рестарта сервиса
const DefaultCacheTTL = 15 * time.Second

// Service провайдер настроек с коротким in-process TTL-кэшем
// Внедряется как интерфейс во все слои; тесты подставляют фиксированные значения
type Service struct {
	repo         SettingsRepository
	ttl          time.Duration
	timeProvider TimeProvider
	logger       Logger

	mu             sync.Mutex
	cachedTimer    *domain.ConfirmationTimerSettings
	timerFetchedAt time.Time
	cachedTable    domain.RefundTable
	tableFetchedAt time.Time
}

// NewService создает новый провайдер настроек
// ttl <= 0 означает DefaultCacheTTL
func NewService(repo SettingsRepository, ttl time.Duration, logger Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		repo:         repo,
		ttl:          ttl,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// TimerSettings возвращает актуальные настройки таймера подтверждения
// При недоступности хранилища возвращает последнее закэшированное значение,
// а без кэша - значения по умолчанию (таймер не критичен для денег)
func (s *Service) TimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	if s.cachedTimer != nil && now.Sub(s.timerFetchedAt) < s.ttl {
		return s.cachedTimer, nil
	}

	loaded, err := s.repo.GetTimerSettings(ctx)
	if err != nil {
		if s.cachedTimer != nil {
			s.logger.Warn("TimerSettings: repository error, serving stale cache: %v", err)
			return s.cachedTimer, nil
		}
		s.logger.Error("TimerSettings: repository error, falling back to defaults: %v", err)
		defaults := domain.DefaultTimerSettings()
		return &defaults, nil
	}

	s.cachedTimer = loaded
	s.timerFetchedAt = now
	return loaded, nil
}

// RefundTable возвращает актуальную таблицу тарифов возврата
// Отсутствие административного переопределения - нормальная ситуация
// (используется встроенная таблица); ошибка хранилища без валидного кэша
// возвращается вызывающему: молчаливый дефолт в денежных расчётах недопустим
func (s *Service) RefundTable(ctx context.Context) (domain.RefundTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	if s.cachedTable != nil && now.Sub(s.tableFetchedAt) < s.ttl {
		return s.cachedTable, nil
	}

	loaded, err := s.repo.GetRefundTable(ctx)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingNotFound) {
			table := domain.DefaultRefundTable()
			s.cachedTable = table
			s.tableFetchedAt = now
			return table, nil
		}
		if s.cachedTable != nil {
			s.logger.Warn("RefundTable: repository error, serving stale cache: %v", err)
			return s.cachedTable, nil
		}
		s.logger.Error("RefundTable: repository error with no cached table: %v", err)
		return nil, fmt.Errorf("%w: RefundTable - repository error: %v", ErrInternal, err)
	}

	s.cachedTable = loaded
	s.tableFetchedAt = now
	return loaded, nil
}
