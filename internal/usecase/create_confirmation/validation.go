package create_confirmation

import "fmt"

// validateRequest валидирует входные данные запроса
// Отклоняет запрос до любых изменений состояния
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	if req.RenterID <= 0 {
		return fmt.Errorf("%w: renterID must be positive", ErrInvalidInput)
	}

	if req.OwnerID == req.RenterID {
		return fmt.Errorf("%w: owner and renter must be different users", ErrInvalidInput)
	}

	if req.EscrowAmount <= 0 {
		return fmt.Errorf("%w: escrowAmount must be positive", ErrInvalidInput)
	}

	return nil
}
