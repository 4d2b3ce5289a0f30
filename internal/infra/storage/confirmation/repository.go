package confirmation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/pkg/dbmetrics"
	"github.com/m04kA/RAV-ConfirmationService/pkg/psqlbuilder"
)

const pqUniqueViolation = "23505"

var confirmationColumns = []string{
	"id",
	"booking_id",
	"owner_id",
	"renter_id",
	"status",
	"deadline",
	"extensions_used",
	"extension_timestamps",
	"confirmed_at",
	"declined_at",
	"timed_out_at",
	"escrow_amount",
	"escrow_status",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями подтверждения бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подтверждений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись подтверждения
// booking_id имеет UNIQUE-ограничение: подтверждение создается ровно один раз
// на бронирование, повторная попытка возвращает ErrDuplicateBooking
func (r *Repository) Create(ctx context.Context, c *domain.BookingConfirmation) (*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	timestamps, err := marshalTimestamps(c.ExtensionTimestamps)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal extension timestamps: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("booking_confirmations").
		Columns(
			"id",
			"booking_id",
			"owner_id",
			"renter_id",
			"status",
			"deadline",
			"extensions_used",
			"extension_timestamps",
			"escrow_amount",
			"escrow_status",
		).
		Values(
			c.ID,
			c.BookingID,
			c.OwnerID,
			c.RenterID,
			c.Status,
			c.Deadline,
			c.ExtensionsUsed,
			timestamps,
			c.EscrowAmount,
			c.EscrowStatus,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return c, nil
}

// GetByID получает запись подтверждения по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(confirmationColumns...).
		From("booking_confirmations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanConfirmation(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByBookingID получает запись подтверждения по ID бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(confirmationColumns...).
		From("booking_confirmations").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanConfirmation(executor.QueryRowContext(ctx, query, args...), "GetByBookingID")
}

// GetPendingByOwner получает все ожидающие ответа подтверждения владельца,
// ближайший дедлайн первым
func (r *Repository) GetPendingByOwner(ctx context.Context, ownerID int64) ([]*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(confirmationColumns...).
		From("booking_confirmations").
		Where(squirrel.Eq{
			"owner_id": ownerID,
			"status":   domain.StatusPendingOwner,
		}).
		OrderBy("deadline ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanConfirmations(rows)
}

// Confirm переводит запись в owner_confirmed
// Условное обновление: строка должна быть в pending_owner и дедлайн не истёк.
// Проигравший писатель (запись уже разрешена или дедлайн прошёл) получает
// ErrNoPendingMatch - ровно один терминальный переход на запись
func (r *Repository) Confirm(ctx context.Context, id string, now time.Time) error {
	return r.resolve(ctx, "Confirm", id, domain.StatusOwnerConfirmed, "confirmed_at", now)
}

// Decline переводит запись в owner_declined
// Семантика условий идентична Confirm
func (r *Repository) Decline(ctx context.Context, id string, now time.Time) error {
	return r.resolve(ctx, "Decline", id, domain.StatusOwnerDeclined, "declined_at", now)
}

func (r *Repository) resolve(ctx context.Context, op string, id string, status domain.ConfirmationStatus, terminalColumn string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_confirmations").
		Set("status", status).
		Set(terminalColumn, now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.StatusPendingOwner,
		}).
		Where(squirrel.GtOrEq{"deadline": now}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrNoPendingMatch
	}

	return nil
}

// Extend продлевает дедлайн на extensionMinutes от текущего дедлайна (не от now,
// чтобы повторные продления у самого дедлайна не накапливали дрейф) и добавляет
// отметку времени в аудит. Условное обновление ключуется на ожидаемом
// extensions_used, так что конкурентные продления не превысят лимит
func (r *Repository) Extend(ctx context.Context, id string, expectedExtensions int, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	appended, err := marshalTimestamps([]time.Time{now})
	if err != nil {
		return nil, fmt.Errorf("%w: Extend - marshal extension timestamp: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("booking_confirmations").
		Set("deadline", squirrel.Expr("deadline + make_interval(mins => ?)", extensionMinutes)).
		Set("extensions_used", squirrel.Expr("extensions_used + 1")).
		Set("extension_timestamps", squirrel.Expr("extension_timestamps || ?::jsonb", appended)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              id,
			"status":          domain.StatusPendingOwner,
			"extensions_used": expectedExtensions,
		}).
		Where(squirrel.GtOrEq{"deadline": now}).
		Suffix("RETURNING " + joinColumns(confirmationColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Extend - build update query: %v", ErrBuildQuery, err)
	}

	updated, err := r.scanConfirmation(executor.QueryRowContext(ctx, query, args...), "Extend")
	if err != nil {
		if errors.Is(err, ErrConfirmationNotFound) {
			return nil, ErrNoPendingMatch
		}
		return nil, err
	}

	return updated, nil
}

// SweepExpired атомарно переводит в owner_timed_out ограниченную пачку записей
// в pending_owner с истёкшим дедлайном и возвращает победившие строки.
// FOR UPDATE SKIP LOCKED позволяет нескольким инстансам sweep'а работать
// конкурентно без взаимной блокировки; повторный вызов для уже обработанных
// записей - no-op (они больше не проходят фильтр по статусу)
func (r *Repository) SweepExpired(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_confirmations").
		Set("status", domain.StatusOwnerTimedOut).
		Set("timed_out_at", now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr(
			`id IN (
				SELECT id FROM booking_confirmations
				WHERE status = ? AND deadline < ?
				ORDER BY deadline ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED
			)`,
			domain.StatusPendingOwner, now, limit,
		)).
		Suffix("RETURNING " + joinColumns(confirmationColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SweepExpired - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SweepExpired - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanConfirmations(rows)
}

// UpdateEscrowStatus переводит статус эскроу condition-ключом на ожидаемом
// текущем значении. Вызывается после успешного обращения к payout-сервису
func (r *Repository) UpdateEscrowStatus(ctx context.Context, id string, from, to domain.EscrowStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_confirmations").
		Set("escrow_status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":            id,
			"escrow_status": from,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateEscrowStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateEscrowStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateEscrowStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEscrowStatusConflict
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanConfirmation(row rowScanner, op string) (*domain.BookingConfirmation, error) {
	var c domain.BookingConfirmation
	var timestamps []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.BookingID,
		&c.OwnerID,
		&c.RenterID,
		&c.Status,
		&c.Deadline,
		&c.ExtensionsUsed,
		&timestamps,
		&c.ConfirmedAt,
		&c.DeclinedAt,
		&c.TimedOutAt,
		&c.EscrowAmount,
		&c.EscrowStatus,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfirmationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan confirmation: %v", ErrScanRow, op, err)
	}

	c.ExtensionTimestamps, err = unmarshalTimestamps(timestamps)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - decode extension timestamps: %v", ErrScanRow, op, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

func (r *Repository) scanConfirmations(rows *sql.Rows) ([]*domain.BookingConfirmation, error) {
	confirmations := make([]*domain.BookingConfirmation, 0)

	for rows.Next() {
		c, err := r.scanConfirmation(rows, "scanConfirmations")
		if err != nil {
			return nil, err
		}
		confirmations = append(confirmations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanConfirmations - rows error: %v", ErrScanRow, err)
	}

	return confirmations, nil
}

// marshalTimestamps сериализует аудит продлений в jsonb
func marshalTimestamps(ts []time.Time) (string, error) {
	if ts == nil {
		ts = []time.Time{}
	}
	b, err := json.Marshal(ts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalTimestamps(raw []byte) ([]time.Time, error) {
	if len(raw) == 0 {
		return []time.Time{}, nil
	}
	var ts []time.Time
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
