package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

const fullRefundDescription = "Full refund - cancelled by owner"

// UseCase use case отмены подтверждённого бронирования
// Размер возврата считает чистый refund-движок по таблице тарифов;
// отмена владельцем всегда возвращает арендатору 100% независимо от
// политики и сроков - это правило вызывающей стороны, не таблицы
type UseCase struct {
	confirmationRepo ConfirmationRepository
	cancellationRepo CancellationRepository
	settings         SettingsProvider
	notifyClient     NotifyServiceClient
	payoutClient     PayoutServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	confirmationRepo ConfirmationRepository,
	cancellationRepo CancellationRepository,
	settings SettingsProvider,
	notifyClient NotifyServiceClient,
	payoutClient PayoutServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		confirmationRepo: confirmationRepo,
		cancellationRepo: cancellationRepo,
		settings:         settings,
		notifyClient:     notifyClient,
		payoutClient:     payoutClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d, actor=%d, cancelledBy=%s, policy=%s",
		req.BookingID, req.ActorUserID, req.CancelledBy, req.Policy)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Запись подтверждения: источник ownerID/renterID для авторизации
	c, err := uc.confirmationRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, confirmationRepo.ErrConfirmationNotFound) {
			uc.logger.Warn("CancelBooking: no confirmation for booking=%d", req.BookingID)
			return nil, ErrConfirmationNotFound
		}
		uc.logger.Error("CancelBooking: repository error for booking=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get confirmation: %v", ErrInternal, err)
	}

	// 3. Отменить можно только подтверждённое бронирование:
	// pending-запись разрешают confirm/decline/sweep, и двойная выплата
	// одного эскроу (refund здесь + release после Confirm) недопустима
	if c.Status != domain.StatusOwnerConfirmed {
		uc.logger.Warn("CancelBooking: booking=%d is not cancellable, status=%s", req.BookingID, c.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancellable, c.Status)
	}

	// 4. Авторизация: заявленная роль должна соответствовать актору
	if err := uc.checkActor(req, c); err != nil {
		return nil, err
	}

	// 5. Расчёт возврата
	now := uc.timeProvider.Now()
	days := domain.DaysUntilCheckin(req.CheckInDate, now)

	table, err := uc.settings.RefundTable(ctx)
	if err != nil {
		uc.logger.Error("CancelBooking: failed to load refund table: %v", err)
		return nil, fmt.Errorf("%w: failed to load refund table: %v", ErrInternal, err)
	}

	policyAmount, err := table.CalculateRefund(req.TotalAmount, req.Policy, days)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPolicy) {
			uc.logger.Warn("CancelBooking: unknown policy %q for booking=%d", req.Policy, req.BookingID)
			return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, req.Policy)
		}
		uc.logger.Warn("CancelBooking: refund calculation failed for booking=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	percent, description, err := table.DescribeRefund(req.Policy, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// Отмена владельцем всегда возвращает полную сумму
	finalAmount := policyAmount
	if req.CancelledBy == domain.CancelledByOwner {
		finalAmount = req.TotalAmount
		percent = 100
		description = fullRefundDescription
	}

	uc.logger.Info("CancelBooking: booking=%d, days=%d, policy amount=%.2f, final amount=%.2f",
		req.BookingID, days, policyAmount, finalAmount)

	// 6. Аудит-запись и статус эскроу в одной транзакции
	record := &domain.CancellationRecord{
		BookingID:          req.BookingID,
		RequesterID:        req.ActorUserID,
		CancelledBy:        req.CancelledBy,
		Policy:             req.Policy,
		Reason:             req.Reason,
		DaysUntilCheckin:   days,
		PolicyRefundAmount: policyAmount,
		FinalRefundAmount:  finalAmount,
		RefundPercent:      percent,
		RefundDescription:  description,
	}

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := uc.cancellationRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("%w: failed to create cancellation record: %v", ErrInternal, err)
		}

		if finalAmount > 0 {
			if err := uc.confirmationRepo.UpdateEscrowStatus(txCtx, c.ID, c.EscrowStatus, domain.EscrowRefunded); err != nil {
				// Эскроу уже переведён другим писателем - отмену это не блокирует
				if errors.Is(err, confirmationRepo.ErrEscrowStatusConflict) {
					uc.logger.Warn("CancelBooking: escrow status conflict for confirmation id=%s", c.ID)
					return nil
				}
				return fmt.Errorf("%w: failed to update escrow status: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		uc.logger.Error("CancelBooking: transaction failed for booking=%d: %v", req.BookingID, err)
		return nil, err
	}

	// 7. Возврат средств арендатору
	// Сбой payout-сервиса не откатывает отмену: аудит-запись хранит сумму,
	// возврат доводится отдельно
	if finalAmount > 0 {
		if err := uc.payoutClient.RefundEscrow(ctx, req.BookingID, finalAmount, description); err != nil {
			uc.logger.Error("CancelBooking: refund payout failed for booking=%d: %v", req.BookingID, err)
		}
	}

	// 8. Нотификация обеих сторон
	if err := uc.notifyClient.Send(ctx, notifyservice.EventBookingCancelled,
		req.BookingID, c.OwnerID, c.RenterID); err != nil {
		uc.logger.Warn("CancelBooking: failed to notify for booking=%d: %v", req.BookingID, err)
	}

	return &Response{
		BookingID:          req.BookingID,
		CancelledBy:        string(req.CancelledBy),
		Policy:             string(req.Policy),
		DaysUntilCheckin:   days,
		RefundPercent:      percent,
		RefundAmount:       finalAmount,
		PolicyRefundAmount: policyAmount,
		RefundDescription:  description,
	}, nil
}

// checkActor проверяет соответствие актора заявленной роли отмены
func (uc *UseCase) checkActor(req *Request, c *domain.BookingConfirmation) error {
	switch req.CancelledBy {
	case domain.CancelledByRenter:
		if c.RenterID != req.ActorUserID {
			uc.logger.Warn("CancelBooking: user=%d is not the renter of booking=%d", req.ActorUserID, req.BookingID)
			return ErrAccessDenied
		}
	case domain.CancelledByOwner:
		if c.OwnerID != req.ActorUserID {
			uc.logger.Warn("CancelBooking: user=%d is not the owner of booking=%d", req.ActorUserID, req.BookingID)
			return ErrAccessDenied
		}
	}
	return nil
}
