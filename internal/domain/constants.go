package domain

// Default confirmation timer values
// Used when the settings store has no overrides
const (
	DefaultWindowMinutes    = 60
	DefaultExtensionMinutes = 30
	DefaultMaxExtensions    = 2
)

// Business validation constants
const (
	MinWindowMinutes    = 5
	MaxWindowMinutes    = 1440 // 24 hours
	MinExtensionMinutes = 5
	MaxExtensionMinutes = 240 // 4 hours
	MinMaxExtensions    = 0
	MaxMaxExtensions    = 10

	MaxCancellationReasonLength = 500
)

// Sweep defaults
const (
	DefaultSweepIntervalSeconds = 30
	DefaultSweepBatchSize       = 100
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов подтверждения
// После перехода в любой из них запись становится неизменяемой
var TerminalStatuses = []ConfirmationStatus{
	StatusOwnerConfirmed,
	StatusOwnerTimedOut,
	StatusOwnerDeclined,
}
