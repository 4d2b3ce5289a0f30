package cancel_booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

type fakeConfirmationRepo struct {
	confirmation  *domain.BookingConfirmation
	getErr        error
	escrowUpdates []domain.EscrowStatus
	escrowErr     error
}

func (f *fakeConfirmationRepo) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingConfirmation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.confirmation, nil
}

func (f *fakeConfirmationRepo) UpdateEscrowStatus(ctx context.Context, id string, from, to domain.EscrowStatus) error {
	f.escrowUpdates = append(f.escrowUpdates, to)
	return f.escrowErr
}

type fakeCancellationRepo struct {
	records []*domain.CancellationRecord
	err     error
}

func (f *fakeCancellationRepo) Create(ctx context.Context, rec *domain.CancellationRecord) (*domain.CancellationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, rec)
	out := *rec
	out.ID = int64(len(f.records))
	return &out, nil
}

type fakeSettings struct {
	table domain.RefundTable
	err   error
}

func (f *fakeSettings) RefundTable(ctx context.Context) (domain.RefundTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
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
	refunded []float64
	err      error
}

func (f *fakePayout) RefundEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.refunded = append(f.refunded, amount)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

type deps struct {
	confirmations *fakeConfirmationRepo
	cancellations *fakeCancellationRepo
	settings      *fakeSettings
	notifier      *fakeNotifier
	payout        *fakePayout
}

func newTestUseCase(d *deps) *UseCase {
	uc := NewUseCase(d.confirmations, d.cancellations, d.settings, d.notifier, d.payout, passthroughTx{}, nopLogger{})
	uc.timeProvider = &fixedTime{now: testNow}
	return uc
}

func defaultDeps() *deps {
	return &deps{
		confirmations: &fakeConfirmationRepo{
			confirmation: &domain.BookingConfirmation{
				ID:           "a3c9f1de-0000-4000-8000-000000000001",
				BookingID:    42,
				OwnerID:      10,
				RenterID:     20,
				Status:       domain.StatusOwnerConfirmed,
				EscrowAmount: 1000,
				EscrowStatus: domain.EscrowHeld,
			},
		},
		cancellations: &fakeCancellationRepo{},
		settings:      &fakeSettings{table: domain.DefaultRefundTable()},
		notifier:      &fakeNotifier{},
		payout:        &fakePayout{},
	}
}

func renterRequest() *Request {
	return &Request{
		BookingID:   42,
		ActorUserID: 20,
		CancelledBy: domain.CancelledByRenter,
		Policy:      domain.PolicyModerate,
		TotalAmount: 1000,
		CheckInDate: testNow.AddDate(0, 0, 3),
		Reason:      "change of plans",
	}
}

func TestUseCase_Execute_RenterCancellation(t *testing.T) {
	t.Run("refund follows the policy table", func(t *testing.T) {
		d := defaultDeps()
		uc := newTestUseCase(d)

		// moderate, 3 дня до заезда: 50%
		resp, err := uc.Execute(context.Background(), renterRequest())
		require.NoError(t, err)

		assert.Equal(t, 3, resp.DaysUntilCheckin)
		assert.Equal(t, 50, resp.RefundPercent)
		assert.Equal(t, float64(500), resp.RefundAmount)
		assert.Equal(t, float64(500), resp.PolicyRefundAmount)
		assert.NotEmpty(t, resp.RefundDescription)

		assert.Equal(t, []float64{500}, d.payout.refunded)
		assert.Equal(t, []domain.EscrowStatus{domain.EscrowRefunded}, d.confirmations.escrowUpdates)
		assert.Equal(t, []notifyservice.Event{notifyservice.EventBookingCancelled}, d.notifier.events)

		require.Len(t, d.cancellations.records, 1)
		rec := d.cancellations.records[0]
		assert.Equal(t, domain.CancelledByRenter, rec.CancelledBy)
		assert.Equal(t, float64(500), rec.PolicyRefundAmount)
		assert.Equal(t, float64(500), rec.FinalRefundAmount)
	})

	t.Run("zero refund skips payout", func(t *testing.T) {
		d := defaultDeps()
		uc := newTestUseCase(d)

		req := renterRequest()
		req.Policy = domain.PolicySuperStrict

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Zero(t, resp.RefundAmount)
		assert.Zero(t, resp.RefundPercent)
		assert.Empty(t, d.payout.refunded)
		assert.Empty(t, d.confirmations.escrowUpdates, "escrow stays held when nothing is refunded")
		require.Len(t, d.cancellations.records, 1, "audit record is written even for zero refund")
	})
}

func TestUseCase_Execute_OwnerOverride(t *testing.T) {
	d := defaultDeps()
	uc := newTestUseCase(d)

	// Отмена владельцем: 100% даже под super_strict в день заезда
	req := renterRequest()
	req.ActorUserID = 10
	req.CancelledBy = domain.CancelledByOwner
	req.Policy = domain.PolicySuperStrict
	req.CheckInDate = testNow

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 100, resp.RefundPercent)
	assert.Equal(t, float64(1000), resp.RefundAmount)
	assert.Zero(t, resp.PolicyRefundAmount, "policy amount records what the table would have paid")
	assert.Equal(t, []float64{1000}, d.payout.refunded)

	require.Len(t, d.cancellations.records, 1)
	rec := d.cancellations.records[0]
	assert.Equal(t, float64(0), rec.PolicyRefundAmount)
	assert.Equal(t, float64(1000), rec.FinalRefundAmount)
	assert.Equal(t, 100, rec.RefundPercent)
}

func TestUseCase_Execute_Errors(t *testing.T) {
	t.Run("unknown policy is rejected, never defaulted", func(t *testing.T) {
		d := defaultDeps()
		uc := newTestUseCase(d)

		req := renterRequest()
		req.Policy = domain.CancellationPolicy("free_for_all")

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnknownPolicy)
		assert.Empty(t, d.cancellations.records)
		assert.Empty(t, d.payout.refunded)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(r *Request)
		}{
			{name: "zero booking id", mutate: func(r *Request) { r.BookingID = 0 }},
			{name: "unknown actor role", mutate: func(r *Request) { r.CancelledBy = "admin" }},
			{name: "negative total amount", mutate: func(r *Request) { r.TotalAmount = -100 }},
			{name: "zero check-in date", mutate: func(r *Request) { r.CheckInDate = time.Time{} }},
			{name: "empty reason", mutate: func(r *Request) { r.Reason = "" }},
			{name: "reason too long", mutate: func(r *Request) { r.Reason = strings.Repeat("x", 501) }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				uc := newTestUseCase(defaultDeps())

				req := renterRequest()
				tt.mutate(req)

				_, err := uc.Execute(context.Background(), req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("only a confirmed booking can be cancelled", func(t *testing.T) {
		statuses := []domain.ConfirmationStatus{
			domain.StatusPendingOwner,
			domain.StatusOwnerDeclined,
			domain.StatusOwnerTimedOut,
		}

		for _, status := range statuses {
			t.Run(string(status), func(t *testing.T) {
				d := defaultDeps()
				d.confirmations.confirmation.Status = status
				uc := newTestUseCase(d)

				_, err := uc.Execute(context.Background(), renterRequest())
				assert.ErrorIs(t, err, ErrNotCancellable)

				// эскроу не трогаем: pending-запись закрывают confirm/decline/sweep
				assert.Empty(t, d.payout.refunded)
				assert.Empty(t, d.confirmations.escrowUpdates)
				assert.Empty(t, d.cancellations.records)
			})
		}
	})

	t.Run("confirmation not found", func(t *testing.T) {
		d := defaultDeps()
		d.confirmations.getErr = confirmationRepo.ErrConfirmationNotFound
		uc := newTestUseCase(d)

		_, err := uc.Execute(context.Background(), renterRequest())
		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})

	t.Run("renter role requires the renter", func(t *testing.T) {
		d := defaultDeps()
		uc := newTestUseCase(d)

		req := renterRequest()
		req.ActorUserID = 10 // владелец не может отменять от имени арендатора

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("owner role requires the owner", func(t *testing.T) {
		d := defaultDeps()
		uc := newTestUseCase(d)

		req := renterRequest()
		req.CancelledBy = domain.CancelledByOwner
		req.ActorUserID = 20

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("refund table failure is internal", func(t *testing.T) {
		d := defaultDeps()
		d.settings.err = errors.New("settings store down")
		uc := newTestUseCase(d)

		_, err := uc.Execute(context.Background(), renterRequest())
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("audit record failure aborts the cancellation", func(t *testing.T) {
		d := defaultDeps()
		d.cancellations.err = errors.New("insert failed")
		uc := newTestUseCase(d)

		_, err := uc.Execute(context.Background(), renterRequest())
		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, d.payout.refunded, "no payout without an audit record")
	})

	t.Run("payout failure does not undo the cancellation", func(t *testing.T) {
		d := defaultDeps()
		d.payout.err = errors.New("payout unavailable")
		uc := newTestUseCase(d)

		resp, err := uc.Execute(context.Background(), renterRequest())
		require.NoError(t, err)
		assert.Equal(t, float64(500), resp.RefundAmount)
		require.Len(t, d.cancellations.records, 1)
	})
}
