package domain

import "time"

// ConfirmationStatus represents the status of an owner confirmation record
type ConfirmationStatus string

const (
	StatusPendingOwner   ConfirmationStatus = "pending_owner"
	StatusOwnerConfirmed ConfirmationStatus = "owner_confirmed"
	StatusOwnerTimedOut  ConfirmationStatus = "owner_timed_out"
	StatusOwnerDeclined  ConfirmationStatus = "owner_declined"
)

// EscrowStatus represents the lifecycle of the funds held for a booking
type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// BookingConfirmation represents a single booking's owner-confirmation record
// Created once when payment authorization succeeds; mutated only through
// confirm/decline/extend/sweep until a terminal status is reached, then immutable.
type BookingConfirmation struct {
	ID        string
	BookingID int64
	OwnerID   int64
	RenterID  int64
	Status    ConfirmationStatus

	// Deadline срок ответа владельца; сдвигается только продлением
	Deadline            time.Time
	ExtensionsUsed      int
	ExtensionTimestamps []time.Time

	ConfirmedAt *time.Time
	DeclinedAt  *time.Time
	TimedOutAt  *time.Time

	EscrowAmount float64
	EscrowStatus EscrowStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the record has left pending_owner
func (c *BookingConfirmation) IsTerminal() bool {
	return c.Status != StatusPendingOwner
}

// CanRespond returns true if the owner can still confirm or decline:
// the record is pending and the deadline has not passed
func (c *BookingConfirmation) CanRespond(now time.Time) bool {
	return c.Status == StatusPendingOwner && !now.After(c.Deadline)
}

// CanExtend returns true if another extension can be granted
func (c *BookingConfirmation) CanExtend(now time.Time, maxExtensions int) bool {
	return c.CanRespond(now) && c.ExtensionsUsed < maxExtensions
}

// IsExpired returns true if the record is still pending but past its deadline
// (the state a sweep cycle resolves to owner_timed_out)
func (c *BookingConfirmation) IsExpired(now time.Time) bool {
	return c.Status == StatusPendingOwner && now.After(c.Deadline)
}

// Countdown derived remaining time until the deadline, split for display
type Countdown struct {
	Hours   int
	Minutes int
	Seconds int
	Expired bool
}

// NewCountdown computes the countdown as a pure function of (deadline, now)
// Negative remainders clamp to zero with Expired set
func NewCountdown(deadline, now time.Time) Countdown {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return Countdown{Expired: true}
	}

	total := int(diff / time.Second)
	return Countdown{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}
