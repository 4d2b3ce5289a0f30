package domain

import (
	"fmt"
	"time"
)

// ConfirmationTimerSettings parameters of the owner confirmation window
// Read from the settings store per operation; administrative changes
// take effect without a restart
type ConfirmationTimerSettings struct {
	WindowMinutes    int
	ExtensionMinutes int
	MaxExtensions    int
}

// DefaultTimerSettings returns the built-in timer parameters
func DefaultTimerSettings() ConfirmationTimerSettings {
	return ConfirmationTimerSettings{
		WindowMinutes:    DefaultWindowMinutes,
		ExtensionMinutes: DefaultExtensionMinutes,
		MaxExtensions:    DefaultMaxExtensions,
	}
}

// Validate проверяет, что настройки в допустимых границах
func (s ConfirmationTimerSettings) Validate() error {
	if s.WindowMinutes < MinWindowMinutes || s.WindowMinutes > MaxWindowMinutes {
		return fmt.Errorf("windowMinutes must be between %d and %d", MinWindowMinutes, MaxWindowMinutes)
	}
	if s.ExtensionMinutes < MinExtensionMinutes || s.ExtensionMinutes > MaxExtensionMinutes {
		return fmt.Errorf("extensionMinutes must be between %d and %d", MinExtensionMinutes, MaxExtensionMinutes)
	}
	if s.MaxExtensions < MinMaxExtensions || s.MaxExtensions > MaxMaxExtensions {
		return fmt.Errorf("maxExtensions must be between %d and %d", MinMaxExtensions, MaxMaxExtensions)
	}
	return nil
}

// Window returns the initial deadline offset from creation
func (s ConfirmationTimerSettings) Window() time.Duration {
	return time.Duration(s.WindowMinutes) * time.Minute
}

// Extension returns the duration a single extension adds to the deadline
func (s ConfirmationTimerSettings) Extension() time.Duration {
	return time.Duration(s.ExtensionMinutes) * time.Minute
}

// TotalWindow returns the maximum extendable window from creation:
// windowMinutes + maxExtensions * extensionMinutes
// Extensions advance the deadline from its current value, never from "now",
// so this bound holds regardless of how extensions are timed
func (s ConfirmationTimerSettings) TotalWindow() time.Duration {
	return s.Window() + time.Duration(s.MaxExtensions)*s.Extension()
}
