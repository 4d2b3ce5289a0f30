package settings

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках провайдера настроек
	ErrInternal = errors.New("settings service: internal error")
)
