package confirmations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations/models"
)

// Причины операций с эскроу, передаются payout-сервису
const (
	reasonOwnerConfirmed = "owner confirmed booking"
	reasonOwnerDeclined  = "owner declined booking"
	reasonTimedOut       = "owner confirmation timed out"
)

// Повторные попытки продления после проигрыша конкурентному продлению
const maxExtendRetries = 2

// Service сервис жизненного цикла подтверждений бронирований
// Единственный писатель состояния подтверждения до достижения терминального
// статуса; гарантия "ровно один терминальный переход" обеспечивается
// условными обновлениями на уровне хранилища, а не in-process блокировками
type Service struct {
	confirmationRepo ConfirmationRepository
	settings         SettingsProvider
	notifyClient     NotifyServiceClient
	payoutClient     PayoutServiceClient
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса подтверждений
func NewService(
	confirmationRepo ConfirmationRepository,
	settings SettingsProvider,
	notifyClient NotifyServiceClient,
	payoutClient PayoutServiceClient,
	logger Logger,
) *Service {
	return &Service{
		confirmationRepo: confirmationRepo,
		settings:         settings,
		notifyClient:     notifyClient,
		payoutClient:     payoutClient,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// GetByID получает запись подтверждения с производным обратным отсчётом
// Доступ имеют владелец и арендатор бронирования
func (s *Service) GetByID(ctx context.Context, id string, actorUserID int64) (*models.ConfirmationResponse, error) {
	s.logger.Info("GetByID: fetching confirmation id=%s for user=%d", id, actorUserID)

	c, err := s.getConfirmation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if c.OwnerID != actorUserID && c.RenterID != actorUserID {
		s.logger.Warn("GetByID: access denied for user=%d to confirmation id=%s", actorUserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainConfirmation(c, s.timeProvider.Now()), nil
}

// GetPendingByOwner получает ожидающие ответа подтверждения владельца,
// ближайший дедлайн первым
func (s *Service) GetPendingByOwner(ctx context.Context, ownerID int64, actorUserID int64) (*models.ConfirmationListResponse, error) {
	s.logger.Info("GetPendingByOwner: fetching pending confirmations for owner=%d", ownerID)

	if ownerID != actorUserID {
		s.logger.Warn("GetPendingByOwner: access denied for user=%d to owner=%d list", actorUserID, ownerID)
		return nil, ErrAccessDenied
	}

	confirmations, err := s.confirmationRepo.GetPendingByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("GetPendingByOwner: repository error for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: GetPendingByOwner - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPendingByOwner: fetched %d pending confirmations for owner=%d", len(confirmations), ownerID)
	return models.FromDomainConfirmationList(confirmations, s.timeProvider.Now()), nil
}

// Confirm переводит запись в owner_confirmed
// Побеждает ровно один из конкурирующих писателей (confirm/decline/sweep);
// проигравший получает ErrAlreadyResolved или ErrDeadlinePassed.
// Побочные эффекты победителя: освобождение эскроу и нотификация арендатора
func (s *Service) Confirm(ctx context.Context, id string, actorOwnerID int64) error {
	s.logger.Info("Confirm: confirming booking, confirmation id=%s, owner=%d", id, actorOwnerID)

	c, err := s.checkOwnerAction(ctx, "Confirm", id, actorOwnerID)
	if err != nil {
		return err
	}

	now := s.timeProvider.Now()
	if err := s.confirmationRepo.Confirm(ctx, id, now); err != nil {
		return s.mapConditionalUpdateError(ctx, "Confirm", id, err)
	}

	s.logger.Info("Confirm: confirmation id=%s resolved to %s", id, domain.StatusOwnerConfirmed)

	// Побочные эффекты после выигранного перехода: их сбой не откатывает
	// терминальный статус. Эскроу остаётся held до успешного release
	s.releaseEscrow(ctx, c)
	s.notify(ctx, notifyservice.EventBookingConfirmed, c)

	return nil
}

// Decline переводит запись в owner_declined
// Отклонённое владельцем бронирование всегда возвращает арендатору полную
// сумму - фиксированное бизнес-правило, не зависящее от политики отмены
func (s *Service) Decline(ctx context.Context, id string, actorOwnerID int64) error {
	s.logger.Info("Decline: declining booking, confirmation id=%s, owner=%d", id, actorOwnerID)

	c, err := s.checkOwnerAction(ctx, "Decline", id, actorOwnerID)
	if err != nil {
		return err
	}

	now := s.timeProvider.Now()
	if err := s.confirmationRepo.Decline(ctx, id, now); err != nil {
		return s.mapConditionalUpdateError(ctx, "Decline", id, err)
	}

	s.logger.Info("Decline: confirmation id=%s resolved to %s", id, domain.StatusOwnerDeclined)

	s.refundEscrow(ctx, c, reasonOwnerDeclined)
	s.notify(ctx, notifyservice.EventBookingDeclined, c)

	return nil
}

// RequestExtension продлевает дедлайн на extensionMinutes от текущего дедлайна
// Количество продлений ограничено maxExtensions из настроек
func (s *Service) RequestExtension(ctx context.Context, id string, actorOwnerID int64) (*models.ExtensionResponse, error) {
	s.logger.Info("RequestExtension: extending deadline, confirmation id=%s, owner=%d", id, actorOwnerID)

	timerSettings, err := s.settings.TimerSettings(ctx)
	if err != nil {
		s.logger.Error("RequestExtension: failed to load timer settings: %v", err)
		return nil, fmt.Errorf("%w: RequestExtension - settings error: %v", ErrInternal, err)
	}

	c, err := s.checkOwnerAction(ctx, "RequestExtension", id, actorOwnerID)
	if err != nil {
		return nil, err
	}

	// Условное обновление может проиграть конкурентному продлению того же
	// владельца: тогда перечитываем счётчик и повторяем с актуальным значением
	expected := c.ExtensionsUsed
	var updated *domain.BookingConfirmation
	for attempt := 0; ; attempt++ {
		if expected >= timerSettings.MaxExtensions {
			s.logger.Warn("RequestExtension: max extensions reached for confirmation id=%s (%d/%d)",
				id, expected, timerSettings.MaxExtensions)
			return nil, ErrMaxExtensionsReached
		}

		now := s.timeProvider.Now()
		updated, err = s.confirmationRepo.Extend(ctx, id, expected, timerSettings.ExtensionMinutes, now)
		if err == nil {
			break
		}
		if !errors.Is(err, confirmationRepo.ErrNoPendingMatch) || attempt >= maxExtendRetries {
			return nil, s.mapConditionalUpdateError(ctx, "RequestExtension", id, err)
		}

		fresh, freshErr := s.getConfirmation(ctx, "RequestExtension", id)
		if freshErr != nil {
			return nil, freshErr
		}
		if fresh.Status != domain.StatusPendingOwner || fresh.ExtensionsUsed == expected {
			// Проигрыш не продлению: терминальный переход или истёкший дедлайн
			return nil, s.mapConditionalUpdateError(ctx, "RequestExtension", id, err)
		}

		s.logger.Info("RequestExtension: lost race to concurrent extension for confirmation id=%s, retrying with %d used",
			id, fresh.ExtensionsUsed)
		expected = fresh.ExtensionsUsed
	}

	s.logger.Info("RequestExtension: confirmation id=%s extended to %s (%d/%d used)",
		id, updated.Deadline.Format(time.RFC3339), updated.ExtensionsUsed, timerSettings.MaxExtensions)

	return &models.ExtensionResponse{
		Deadline:            updated.Deadline.Format(time.RFC3339),
		ExtensionsUsed:      updated.ExtensionsUsed,
		ExtensionsRemaining: timerSettings.MaxExtensions - updated.ExtensionsUsed,
	}, nil
}

// SweepExpired переводит в owner_timed_out ограниченную пачку просроченных
// записей и выполняет побочные эффекты таймаута для каждого победителя:
// полный возврат эскроу арендатору и нотификация обеих сторон.
// Идемпотентен: повторный вызов не находит уже обработанные записи.
// Возвращает количество обработанных записей
func (s *Service) SweepExpired(ctx context.Context, batchSize int) (int, error) {
	now := s.timeProvider.Now()

	expired, err := s.confirmationRepo.SweepExpired(ctx, now, batchSize)
	if err != nil {
		s.logger.Error("SweepExpired: repository error: %v", err)
		return 0, fmt.Errorf("%w: SweepExpired - repository error: %v", ErrInternal, err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	s.logger.Info("SweepExpired: %d confirmations timed out", len(expired))

	for _, c := range expired {
		s.logger.Info("SweepExpired: confirmation id=%s (booking=%d) resolved to %s",
			c.ID, c.BookingID, domain.StatusOwnerTimedOut)
		s.refundEscrow(ctx, c, reasonTimedOut)
		s.notify(ctx, notifyservice.EventConfirmationTimedOut, c)
	}

	return len(expired), nil
}

// Вспомогательные методы

// checkOwnerAction общие предусловия действий владельца:
// запись существует, действует владелец, статус pending, дедлайн не истёк
func (s *Service) checkOwnerAction(ctx context.Context, op string, id string, actorOwnerID int64) (*domain.BookingConfirmation, error) {
	c, err := s.getConfirmation(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if c.OwnerID != actorOwnerID {
		s.logger.Warn("%s: access denied for user=%d to confirmation id=%s", op, actorOwnerID, id)
		return nil, ErrAccessDenied
	}

	if c.IsTerminal() {
		s.logger.Warn("%s: confirmation id=%s already resolved, status=%s", op, id, c.Status)
		return nil, ErrAlreadyResolved
	}

	if now := s.timeProvider.Now(); now.After(c.Deadline) {
		s.logger.Warn("%s: deadline passed for confirmation id=%s (deadline=%s)",
			op, id, c.Deadline.Format(time.RFC3339))
		return nil, ErrDeadlinePassed
	}

	return c, nil
}

func (s *Service) getConfirmation(ctx context.Context, op string, id string) (*domain.BookingConfirmation, error) {
	c, err := s.confirmationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, confirmationRepo.ErrConfirmationNotFound) {
			s.logger.Warn("%s: confirmation id=%s not found", op, id)
			return nil, ErrConfirmationNotFound
		}
		s.logger.Error("%s: repository error for confirmation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return c, nil
}

// mapConditionalUpdateError разбирает проигрыш условного обновления:
// перечитывает запись и возвращает точную причину отказа
func (s *Service) mapConditionalUpdateError(ctx context.Context, op string, id string, err error) error {
	if !errors.Is(err, confirmationRepo.ErrNoPendingMatch) {
		s.logger.Error("%s: repository error for confirmation id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	c, readErr := s.getConfirmation(ctx, op, id)
	if readErr != nil {
		return readErr
	}

	if c.IsTerminal() {
		s.logger.Warn("%s: lost race for confirmation id=%s, already resolved to %s", op, id, c.Status)
		return ErrAlreadyResolved
	}

	s.logger.Warn("%s: deadline passed for confirmation id=%s", op, id)
	return ErrDeadlinePassed
}

// releaseEscrow освобождает эскроу в сторону выплаты владельцу
// Статус эскроу меняется только после успешного обращения к payout-сервису
func (s *Service) releaseEscrow(ctx context.Context, c *domain.BookingConfirmation) {
	if err := s.payoutClient.ReleaseEscrow(ctx, c.BookingID, c.EscrowAmount, reasonOwnerConfirmed); err != nil {
		s.logger.Error("releaseEscrow: payout call failed for booking=%d, escrow stays held: %v", c.BookingID, err)
		return
	}

	if err := s.confirmationRepo.UpdateEscrowStatus(ctx, c.ID, domain.EscrowHeld, domain.EscrowReleased); err != nil {
		s.logger.Error("releaseEscrow: failed to update escrow status for confirmation id=%s: %v", c.ID, err)
	}
}

// refundEscrow возвращает полную сумму эскроу арендатору
func (s *Service) refundEscrow(ctx context.Context, c *domain.BookingConfirmation, reason string) {
	if err := s.payoutClient.RefundEscrow(ctx, c.BookingID, c.EscrowAmount, reason); err != nil {
		s.logger.Error("refundEscrow: payout call failed for booking=%d, escrow stays held: %v", c.BookingID, err)
		return
	}

	if err := s.confirmationRepo.UpdateEscrowStatus(ctx, c.ID, domain.EscrowHeld, domain.EscrowRefunded); err != nil {
		s.logger.Error("refundEscrow: failed to update escrow status for confirmation id=%s: %v", c.ID, err)
	}
}

// notify отправляет событие нотификации
// Потерянная нотификация не откатывает терминальный переход
func (s *Service) notify(ctx context.Context, event notifyservice.Event, c *domain.BookingConfirmation) {
	if err := s.notifyClient.Send(ctx, event, c.BookingID, c.OwnerID, c.RenterID); err != nil {
		s.logger.Warn("notify: failed to send %s for booking=%d: %v", event, c.BookingID, err)
	}
}
