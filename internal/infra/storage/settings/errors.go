package settings

import "errors"

var (
	// ErrSettingNotFound возвращается, когда ключ отсутствует в system_settings
	ErrSettingNotFound = errors.New("settings.repository: setting not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("settings.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("settings.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("settings.repository: failed to scan row")

	// ErrInvalidValue возвращается при некорректном значении настройки
	ErrInvalidValue = errors.New("settings.repository: invalid setting value")
)
