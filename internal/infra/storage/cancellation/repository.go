package cancellation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/pkg/dbmetrics"
	"github.com/m04kA/RAV-ConfirmationService/pkg/psqlbuilder"
)

// Repository репозиторий аудит-записей отмен бронирований
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория отмен
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет аудит-запись отмены
// Запись фиксирует и расчётную сумму по политике, и фактически возвращённую,
// чтобы решение owner-override оставалось видимым в истории
func (r *Repository) Create(ctx context.Context, rec *domain.CancellationRecord) (*domain.CancellationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("cancellation_requests").
		Columns(
			"booking_id",
			"requester_id",
			"cancelled_by",
			"policy",
			"reason",
			"days_until_checkin",
			"policy_refund_amount",
			"final_refund_amount",
			"refund_percent",
			"refund_description",
		).
		Values(
			rec.BookingID,
			rec.RequesterID,
			rec.CancelledBy,
			rec.Policy,
			rec.Reason,
			rec.DaysUntilCheckin,
			rec.PolicyRefundAmount,
			rec.FinalRefundAmount,
			rec.RefundPercent,
			rec.RefundDescription,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rec.CreatedAt = createdAt.Time

	return rec, nil
}
