package create_confirmation

import "time"

// Request входные данные создания подтверждения
// Вызывается payment-сервисом после успешной авторизации платежа
type Request struct {
	BookingID    int64
	OwnerID      int64
	RenterID     int64
	EscrowAmount float64
}

// Response результат создания подтверждения
type Response struct {
	ID             string
	BookingID      int64
	OwnerID        int64
	RenterID       int64
	Status         string
	Deadline       time.Time
	ExtensionsUsed int
	EscrowAmount   float64
	EscrowStatus   string
	CreatedAt      time.Time
}
