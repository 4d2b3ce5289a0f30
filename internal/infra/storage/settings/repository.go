package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/pkg/dbmetrics"
	"github.com/m04kA/RAV-ConfirmationService/pkg/psqlbuilder"
)

// Ключи таблицы system_settings
const (
	KeyWindowMinutes    = "owner_confirmation_window_minutes"
	KeyExtensionMinutes = "owner_confirmation_extension_minutes"
	KeyMaxExtensions    = "owner_confirmation_max_extensions"
	KeyRefundTable      = "cancellation_refund_table"
)

// Repository репозиторий системных настроек (read-only для этого сервиса,
// значения меняются административно)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// numericSetting формат числовых значений в system_settings: {"value": 60}
type numericSetting struct {
	Value int `json:"value"`
}

// GetTimerSettings читает настройки таймера подтверждения
// Отсутствующие ключи заполняются значениями по умолчанию
func (r *Repository) GetTimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("setting_key", "setting_value").
		From("system_settings").
		Where(squirrel.Eq{"setting_key": []string{
			KeyWindowMinutes,
			KeyExtensionMinutes,
			KeyMaxExtensions,
		}}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTimerSettings - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimerSettings - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	settings := domain.DefaultTimerSettings()

	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("%w: GetTimerSettings - scan row: %v", ErrScanRow, err)
		}

		var val numericSetting
		if err := json.Unmarshal(raw, &val); err != nil {
			return nil, fmt.Errorf("%w: GetTimerSettings - key %s: %v", ErrInvalidValue, key, err)
		}

		switch key {
		case KeyWindowMinutes:
			settings.WindowMinutes = val.Value
		case KeyExtensionMinutes:
			settings.ExtensionMinutes = val.Value
		case KeyMaxExtensions:
			settings.MaxExtensions = val.Value
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTimerSettings - rows error: %v", ErrScanRow, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: GetTimerSettings - %v", ErrInvalidValue, err)
	}

	return &settings, nil
}

// GetRefundTable читает таблицу тарифов возврата
// Возвращает ErrSettingNotFound, если таблица не переопределена административно
func (r *Repository) GetRefundTable(ctx context.Context) (domain.RefundTable, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("setting_value").
		From("system_settings").
		Where(squirrel.Eq{"setting_key": KeyRefundTable}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRefundTable - build select query: %v", ErrBuildQuery, err)
	}

	var raw []byte
	err = executor.QueryRowContext(ctx, query, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRefundTable - execute query: %v", ErrExecQuery, err)
	}

	var table domain.RefundTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: GetRefundTable - decode table: %v", ErrInvalidValue, err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: GetRefundTable - %v", ErrInvalidValue, err)
	}

	return table, nil
}
