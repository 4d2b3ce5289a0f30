package create_confirmation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

// UseCase use case создания записи подтверждения
// Запись создается ровно один раз на бронирование, когда платёж авторизован;
// дедлайн отсчитывается от момента создания на windowMinutes из настроек
type UseCase struct {
	confirmationRepo ConfirmationRepository
	settings         SettingsProvider
	notifyClient     NotifyServiceClient
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	confirmationRepo ConfirmationRepository,
	settings SettingsProvider,
	notifyClient NotifyServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		confirmationRepo: confirmationRepo,
		settings:         settings,
		notifyClient:     notifyClient,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания подтверждения
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateConfirmation: booking=%d, owner=%d, renter=%d, escrow=%.2f",
		req.BookingID, req.OwnerID, req.RenterID, req.EscrowAmount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateConfirmation: validation failed: %v", err)
		return nil, err
	}

	// 2. Настройки таймера (перечитываются с коротким TTL)
	timerSettings, err := uc.settings.TimerSettings(ctx)
	if err != nil {
		uc.logger.Error("CreateConfirmation: failed to load timer settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load timer settings: %v", ErrInternal, err)
	}

	// 3. Создаем запись: дедлайн = now + windowMinutes
	now := uc.timeProvider.Now()

	c := &domain.BookingConfirmation{
		ID:                  uuid.NewString(),
		BookingID:           req.BookingID,
		OwnerID:             req.OwnerID,
		RenterID:            req.RenterID,
		Status:              domain.StatusPendingOwner,
		Deadline:            now.Add(timerSettings.Window()),
		ExtensionsUsed:      0,
		ExtensionTimestamps: []time.Time{},
		EscrowAmount:        req.EscrowAmount,
		EscrowStatus:        domain.EscrowHeld,
	}

	created, err := uc.confirmationRepo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, confirmationRepo.ErrDuplicateBooking) {
			uc.logger.Warn("CreateConfirmation: confirmation already exists for booking=%d", req.BookingID)
			return nil, ErrAlreadyExists
		}
		uc.logger.Error("CreateConfirmation: failed to create confirmation: %v", err)
		return nil, fmt.Errorf("%w: failed to create confirmation: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateConfirmation: created confirmation id=%s, deadline=%s",
		created.ID, created.Deadline.Format(time.RFC3339))

	// 4. Нотифицируем владельца о необходимости подтвердить бронирование
	// Потерянная нотификация не откатывает создание: владелец увидит запись
	// в своём списке ожидающих подтверждений
	if err := uc.notifyClient.Send(ctx, notifyservice.EventConfirmationRequested,
		created.BookingID, created.OwnerID, created.RenterID); err != nil {
		uc.logger.Warn("CreateConfirmation: failed to notify owner for booking=%d: %v", created.BookingID, err)
	}

	return &Response{
		ID:             created.ID,
		BookingID:      created.BookingID,
		OwnerID:        created.OwnerID,
		RenterID:       created.RenterID,
		Status:         string(created.Status),
		Deadline:       created.Deadline,
		ExtensionsUsed: created.ExtensionsUsed,
		EscrowAmount:   created.EscrowAmount,
		EscrowStatus:   string(created.EscrowStatus),
		CreatedAt:      created.CreatedAt,
	}, nil
}
