package create_confirmation

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

type fakeRepo struct {
	created  *domain.BookingConfirmation
	createFn func(ctx context.Context, c *domain.BookingConfirmation) (*domain.BookingConfirmation, error)
}

func (f *fakeRepo) Create(ctx context.Context, c *domain.BookingConfirmation) (*domain.BookingConfirmation, error) {
	f.created = c
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	out := *c
	out.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &out, nil
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

func validRequest() *Request {
	return &Request{BookingID: 42, OwnerID: 10, RenterID: 20, EscrowAmount: 1500}
}

func newTestUseCase(repo *fakeRepo, settings *fakeSettings, notifier *fakeNotifier) *UseCase {
	uc := NewUseCase(repo, settings, notifier, nopLogger{})
	uc.timeProvider = &fixedTime{now: testNow}
	return uc
}

func TestUseCase_Execute(t *testing.T) {
	t.Run("creates pending record with deadline from settings", func(t *testing.T) {
		repo := &fakeRepo{}
		settings := &fakeSettings{settings: domain.ConfirmationTimerSettings{
			WindowMinutes: 90, ExtensionMinutes: 30, MaxExtensions: 2,
		}}
		notifier := &fakeNotifier{}
		uc := newTestUseCase(repo, settings, notifier)

		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, string(domain.StatusPendingOwner), resp.Status)
		assert.Equal(t, testNow.Add(90*time.Minute), resp.Deadline)
		assert.Equal(t, string(domain.EscrowHeld), resp.EscrowStatus)
		assert.Zero(t, resp.ExtensionsUsed)

		require.NotNil(t, repo.created)
		assert.Equal(t, domain.StatusPendingOwner, repo.created.Status)
		assert.Equal(t, []notifyservice.Event{notifyservice.EventConfirmationRequested}, notifier.events)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(r *Request)
		}{
			{name: "zero booking id", mutate: func(r *Request) { r.BookingID = 0 }},
			{name: "negative owner id", mutate: func(r *Request) { r.OwnerID = -1 }},
			{name: "zero renter id", mutate: func(r *Request) { r.RenterID = 0 }},
			{name: "owner equals renter", mutate: func(r *Request) { r.RenterID = r.OwnerID }},
			{name: "zero escrow amount", mutate: func(r *Request) { r.EscrowAmount = 0 }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				uc := newTestUseCase(&fakeRepo{}, &fakeSettings{settings: domain.DefaultTimerSettings()}, &fakeNotifier{})

				req := validRequest()
				tt.mutate(req)

				_, err := uc.Execute(context.Background(), req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("duplicate booking maps to already exists", func(t *testing.T) {
		repo := &fakeRepo{
			createFn: func(ctx context.Context, c *domain.BookingConfirmation) (*domain.BookingConfirmation, error) {
				return nil, confirmationRepo.ErrDuplicateBooking
			},
		}
		uc := newTestUseCase(repo, &fakeSettings{settings: domain.DefaultTimerSettings()}, &fakeNotifier{})

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("settings failure is internal", func(t *testing.T) {
		uc := newTestUseCase(&fakeRepo{}, &fakeSettings{err: errors.New("settings store down")}, &fakeNotifier{})

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("notification failure does not fail creation", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("notify unavailable")}
		uc := newTestUseCase(&fakeRepo{}, &fakeSettings{settings: domain.DefaultTimerSettings()}, notifier)

		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
	})
}
