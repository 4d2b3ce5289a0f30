package confirmations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

// Тестовые двойники

type fakeRepo struct {
	getByIDFn           func(ctx context.Context, id string) (*domain.BookingConfirmation, error)
	getPendingByOwnerFn func(ctx context.Context, ownerID int64) ([]*domain.BookingConfirmation, error)
	confirmFn           func(ctx context.Context, id string, now time.Time) error
	declineFn           func(ctx context.Context, id string, now time.Time) error
	extendFn            func(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error)
	sweepExpiredFn      func(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error)
	updateEscrowFn      func(ctx context.Context, id string, from, to domain.EscrowStatus) error

	escrowUpdates []domain.EscrowStatus
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeRepo) GetPendingByOwner(ctx context.Context, ownerID int64) ([]*domain.BookingConfirmation, error) {
	return f.getPendingByOwnerFn(ctx, ownerID)
}

func (f *fakeRepo) Confirm(ctx context.Context, id string, now time.Time) error {
	return f.confirmFn(ctx, id, now)
}

func (f *fakeRepo) Decline(ctx context.Context, id string, now time.Time) error {
	return f.declineFn(ctx, id, now)
}

func (f *fakeRepo) Extend(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
	return f.extendFn(ctx, id, expectedExtensions, extensionMinutes, now)
}

func (f *fakeRepo) SweepExpired(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error) {
	return f.sweepExpiredFn(ctx, now, limit)
}

func (f *fakeRepo) UpdateEscrowStatus(ctx context.Context, id string, from, to domain.EscrowStatus) error {
	f.escrowUpdates = append(f.escrowUpdates, to)
	if f.updateEscrowFn != nil {
		return f.updateEscrowFn(ctx, id, from, to)
	}
	return nil
}

type fakeSettings struct {
	settings domain.ConfirmationTimerSettings
	err      error
}

func (f *fakeSettings) TimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.settings
	return &s, nil
}

type fakeNotifier struct {
	events []notifyservice.Event
	err    error
}

func (f *fakeNotifier) Send(ctx context.Context, event notifyservice.Event, bookingID, ownerID, renterID int64) error {
	f.events = append(f.events, event)
	return f.err
}

type fakePayout struct {
	released []float64
	refunded []float64
	err      error
}

func (f *fakePayout) ReleaseEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, amount)
	return nil
}

func (f *fakePayout) RefundEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.refunded = append(f.refunded, amount)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func pendingConfirmation() *domain.BookingConfirmation {
	return &domain.BookingConfirmation{
		ID:           "a3c9f1de-0000-4000-8000-000000000001",
		BookingID:    42,
		OwnerID:      10,
		RenterID:     20,
		Status:       domain.StatusPendingOwner,
		Deadline:     testNow.Add(30 * time.Minute),
		EscrowAmount: 1500,
		EscrowStatus: domain.EscrowHeld,
	}
}

func newTestService(repo *fakeRepo, settings *fakeSettings, notifier *fakeNotifier, payout *fakePayout) *Service {
	svc := NewService(repo, settings, notifier, payout, nopLogger{})
	svc.timeProvider = &fixedTime{now: testNow}
	return svc
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultTimerSettings()}
}

// GetByID

func TestService_GetByID(t *testing.T) {
	c := pendingConfirmation()
	repo := &fakeRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
			return c, nil
		},
	}
	svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

	t.Run("owner can read", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), c.ID, c.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, resp.ID)
		assert.False(t, resp.Countdown.Expired)
		assert.Equal(t, 0, resp.Countdown.Hours)
		assert.Equal(t, 30, resp.Countdown.Minutes)
	})

	t.Run("renter can read", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), c.ID, c.RenterID)
		require.NoError(t, err)
		assert.Equal(t, c.BookingID, resp.BookingID)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), c.ID, 999)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		missingRepo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return nil, confirmationRepo.ErrConfirmationNotFound
			},
		}
		missingSvc := newTestService(missingRepo, defaultSettings(), &fakeNotifier{}, &fakePayout{})
		_, err := missingSvc.GetByID(context.Background(), "missing", 10)
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})
}

func TestService_GetPendingByOwner(t *testing.T) {
	repo := &fakeRepo{
		getPendingByOwnerFn: func(ctx context.Context, ownerID int64) ([]*domain.BookingConfirmation, error) {
			return []*domain.BookingConfirmation{pendingConfirmation()}, nil
		},
	}
	svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

	t.Run("owner reads own list", func(t *testing.T) {
		resp, err := svc.GetPendingByOwner(context.Background(), 10, 10)
		require.NoError(t, err)
		assert.Len(t, resp.Confirmations, 1)
	})

	t.Run("other user is denied", func(t *testing.T) {
		_, err := svc.GetPendingByOwner(context.Background(), 10, 20)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

// Confirm / Decline

func TestService_Confirm(t *testing.T) {
	t.Run("success releases escrow and notifies", func(t *testing.T) {
		c := pendingConfirmation()
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
			confirmFn: func(ctx context.Context, id string, now time.Time) error {
				return nil
			},
		}
		notifier := &fakeNotifier{}
		payout := &fakePayout{}
		svc := newTestService(repo, defaultSettings(), notifier, payout)

		err := svc.Confirm(context.Background(), c.ID, c.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, []float64{1500}, payout.released)
		assert.Equal(t, []domain.EscrowStatus{domain.EscrowReleased}, repo.escrowUpdates)
		assert.Equal(t, []notifyservice.Event{notifyservice.EventBookingConfirmed}, notifier.events)
	})

	t.Run("not the owner", func(t *testing.T) {
		c := pendingConfirmation()
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		err := svc.Confirm(context.Background(), c.ID, c.RenterID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("already resolved", func(t *testing.T) {
		c := pendingConfirmation()
		c.Status = domain.StatusOwnerDeclined
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		err := svc.Confirm(context.Background(), c.ID, c.OwnerID)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("deadline passed", func(t *testing.T) {
		c := pendingConfirmation()
		c.Deadline = testNow.Add(-time.Minute)
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		err := svc.Confirm(context.Background(), c.ID, c.OwnerID)
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("lost race maps to already resolved", func(t *testing.T) {
		// Предусловия прошли по pending-снимку, но условное обновление
		// проиграло конкуренту: повторное чтение видит терминальный статус
		pending := pendingConfirmation()
		resolved := pendingConfirmation()
		resolved.Status = domain.StatusOwnerDeclined

		calls := 0
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				calls++
				if calls == 1 {
					return pending, nil
				}
				return resolved, nil
			},
			confirmFn: func(ctx context.Context, id string, now time.Time) error {
				return confirmationRepo.ErrNoPendingMatch
			},
		}
		notifier := &fakeNotifier{}
		payout := &fakePayout{}
		svc := newTestService(repo, defaultSettings(), notifier, payout)

		err := svc.Confirm(context.Background(), pending.ID, pending.OwnerID)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
		assert.Empty(t, payout.released, "loser must not touch escrow")
		assert.Empty(t, notifier.events, "loser must not notify")
	})

	t.Run("payout failure keeps escrow held", func(t *testing.T) {
		c := pendingConfirmation()
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
			confirmFn: func(ctx context.Context, id string, now time.Time) error {
				return nil
			},
		}
		payout := &fakePayout{err: errors.New("payout unavailable")}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, payout)

		// Переход состоялся, сбой выплаты его не откатывает
		err := svc.Confirm(context.Background(), c.ID, c.OwnerID)
		require.NoError(t, err)
		assert.Empty(t, repo.escrowUpdates, "escrow status must stay held until payout succeeds")
	})
}

func TestService_Decline(t *testing.T) {
	t.Run("success refunds escrow in full", func(t *testing.T) {
		c := pendingConfirmation()
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
			declineFn: func(ctx context.Context, id string, now time.Time) error {
				return nil
			},
		}
		notifier := &fakeNotifier{}
		payout := &fakePayout{}
		svc := newTestService(repo, defaultSettings(), notifier, payout)

		err := svc.Decline(context.Background(), c.ID, c.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, []float64{1500}, payout.refunded)
		assert.Equal(t, []domain.EscrowStatus{domain.EscrowRefunded}, repo.escrowUpdates)
		assert.Equal(t, []notifyservice.Event{notifyservice.EventBookingDeclined}, notifier.events)
	})

	t.Run("lost race to deadline maps to deadline passed", func(t *testing.T) {
		pending := pendingConfirmation()

		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return pending, nil
			},
			declineFn: func(ctx context.Context, id string, now time.Time) error {
				return confirmationRepo.ErrNoPendingMatch
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		// Запись всё ещё pending, значит условное обновление отсёк дедлайн
		err := svc.Decline(context.Background(), pending.ID, pending.OwnerID)
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})
}

// RequestExtension

func TestService_RequestExtension(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := pendingConfirmation()
		extended := pendingConfirmation()
		extended.Deadline = c.Deadline.Add(30 * time.Minute)
		extended.ExtensionsUsed = 1

		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
			extendFn: func(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
				assert.Equal(t, 0, expectedExtensions)
				assert.Equal(t, 30, extensionMinutes)
				return extended, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		resp, err := svc.RequestExtension(context.Background(), c.ID, c.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, extended.Deadline.Format(time.RFC3339), resp.Deadline)
		assert.Equal(t, 1, resp.ExtensionsUsed)
		assert.Equal(t, 1, resp.ExtensionsRemaining)
	})

	t.Run("max extensions reached", func(t *testing.T) {
		c := pendingConfirmation()
		c.ExtensionsUsed = 2
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return c, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		_, err := svc.RequestExtension(context.Background(), c.ID, c.OwnerID)
		assert.ErrorIs(t, err, ErrMaxExtensionsReached)
	})

	t.Run("race with concurrent extension hits the limit", func(t *testing.T) {
		// Снимок видел 1 использованное продление, но до условного
		// обновления конкурент использовал последнее
		stale := pendingConfirmation()
		stale.ExtensionsUsed = 1
		fresh := pendingConfirmation()
		fresh.ExtensionsUsed = 2

		calls := 0
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				calls++
				if calls == 1 {
					return stale, nil
				}
				return fresh, nil
			},
			extendFn: func(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
				return nil, confirmationRepo.ErrNoPendingMatch
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		_, err := svc.RequestExtension(context.Background(), stale.ID, stale.OwnerID)
		assert.ErrorIs(t, err, ErrMaxExtensionsReached)
	})

	t.Run("race with concurrent extension retries under the limit", func(t *testing.T) {
		// Снимок видел 0 использованных продлений, конкурент успел использовать
		// одно; лимит ещё не достигнут, продление должно пройти со второй попытки
		stale := pendingConfirmation()
		fresh := pendingConfirmation()
		fresh.ExtensionsUsed = 1
		extended := pendingConfirmation()
		extended.Deadline = fresh.Deadline.Add(30 * time.Minute)
		extended.ExtensionsUsed = 2

		getCalls := 0
		var extendAttempts []int
		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				getCalls++
				if getCalls == 1 {
					return stale, nil
				}
				return fresh, nil
			},
			extendFn: func(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
				extendAttempts = append(extendAttempts, expectedExtensions)
				if expectedExtensions == 0 {
					return nil, confirmationRepo.ErrNoPendingMatch
				}
				return extended, nil
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		resp, err := svc.RequestExtension(context.Background(), stale.ID, stale.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, extendAttempts, "retry carries the fresh extension count")
		assert.Equal(t, 2, resp.ExtensionsUsed)
		assert.Equal(t, 0, resp.ExtensionsRemaining)
	})

	t.Run("lost race to deadline maps to deadline passed", func(t *testing.T) {
		// Запись pending и счётчик не менялся: условное обновление отсёк дедлайн
		pending := pendingConfirmation()

		repo := &fakeRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.BookingConfirmation, error) {
				return pending, nil
			},
			extendFn: func(ctx context.Context, id string, expectedExtensions, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error) {
				return nil, confirmationRepo.ErrNoPendingMatch
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		_, err := svc.RequestExtension(context.Background(), pending.ID, pending.OwnerID)
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("settings failure is internal", func(t *testing.T) {
		repo := &fakeRepo{}
		settings := &fakeSettings{err: errors.New("settings store down")}
		svc := newTestService(repo, settings, &fakeNotifier{}, &fakePayout{})

		_, err := svc.RequestExtension(context.Background(), "any", 10)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

// SweepExpired

func TestService_SweepExpired(t *testing.T) {
	t.Run("refunds and notifies each timed out record", func(t *testing.T) {
		first := pendingConfirmation()
		second := pendingConfirmation()
		second.ID = "a3c9f1de-0000-4000-8000-000000000002"
		second.BookingID = 43
		second.EscrowAmount = 800

		repo := &fakeRepo{
			sweepExpiredFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error) {
				assert.Equal(t, 100, limit)
				return []*domain.BookingConfirmation{first, second}, nil
			},
		}
		notifier := &fakeNotifier{}
		payout := &fakePayout{}
		svc := newTestService(repo, defaultSettings(), notifier, payout)

		count, err := svc.SweepExpired(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, []float64{1500, 800}, payout.refunded)
		assert.Equal(t, []notifyservice.Event{
			notifyservice.EventConfirmationTimedOut,
			notifyservice.EventConfirmationTimedOut,
		}, notifier.events)
	})

	t.Run("empty sweep is a no-op", func(t *testing.T) {
		repo := &fakeRepo{
			sweepExpiredFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error) {
				return nil, nil
			},
		}
		notifier := &fakeNotifier{}
		svc := newTestService(repo, defaultSettings(), notifier, &fakePayout{})

		count, err := svc.SweepExpired(context.Background(), 100)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, notifier.events)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &fakeRepo{
			sweepExpiredFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error) {
				return nil, errors.New("db down")
			},
		}
		svc := newTestService(repo, defaultSettings(), &fakeNotifier{}, &fakePayout{})

		_, err := svc.SweepExpired(context.Background(), 100)
		assert.ErrorIs(t, err, ErrInternal)
	})
}
