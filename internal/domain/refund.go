package domain

import (
	"errors"
	"fmt"
	"math"
)

// CancellationPolicy named refund tier attached to a listing
type CancellationPolicy string

const (
	PolicyFlexible    CancellationPolicy = "flexible"
	PolicyModerate    CancellationPolicy = "moderate"
	PolicyStrict      CancellationPolicy = "strict"
	PolicySuperStrict CancellationPolicy = "super_strict"
)

// CancelledBy actor role that initiated a cancellation
type CancelledBy string

const (
	CancelledByRenter CancelledBy = "renter"
	CancelledByOwner  CancelledBy = "owner"
)

// IsValid returns true for a known actor role
func (c CancelledBy) IsValid() bool {
	return c == CancelledByRenter || c == CancelledByOwner
}

var (
	// ErrUnknownPolicy возвращается для политики, отсутствующей в таблице
	// Неизвестная политика - это ошибка, а не 0% или 100% по умолчанию
	ErrUnknownPolicy = errors.New("domain: unknown cancellation policy")

	// ErrNegativeAmount возвращается при отрицательной сумме бронирования
	ErrNegativeAmount = errors.New("domain: total amount must not be negative")

	// ErrInvalidRefundTable возвращается при некорректной таблице тарифов
	ErrInvalidRefundTable = errors.New("domain: invalid refund table")
)

// RefundTier a single step of the refund function: applies when the
// cancellation happens MinDaysBefore or more days before check-in
type RefundTier struct {
	MinDaysBefore int    `json:"minDaysBefore"`
	Percent       int    `json:"percent"`
	Description   string `json:"description"`
}

// PolicyRefundRule refund tiers of one policy, ordered by MinDaysBefore
// descending; the first matching tier wins. NoRefundDescription applies
// when the cancellation is later than every tier.
type PolicyRefundRule struct {
	Tiers               []RefundTier `json:"tiers"`
	NoRefundDescription string       `json:"noRefundDescription"`
}

// RefundTable refund percentage table per cancellation policy
// The exact breakpoints are configuration, not code: the settings store
// may override the default table without a deploy
type RefundTable map[CancellationPolicy]PolicyRefundRule

// DefaultRefundTable returns the built-in policy table
func DefaultRefundTable() RefundTable {
	return RefundTable{
		PolicyFlexible: {
			Tiers: []RefundTier{
				{MinDaysBefore: 1, Percent: 100, Description: "Full refund available"},
			},
			NoRefundDescription: "No refund - less than 24 hours before check-in",
		},
		PolicyModerate: {
			Tiers: []RefundTier{
				{MinDaysBefore: 5, Percent: 100, Description: "Full refund available (5+ days before)"},
				{MinDaysBefore: 1, Percent: 50, Description: "50% refund available (1-4 days before)"},
			},
			NoRefundDescription: "No refund - less than 24 hours before check-in",
		},
		PolicyStrict: {
			Tiers: []RefundTier{
				{MinDaysBefore: 7, Percent: 50, Description: "50% refund available (7+ days before)"},
			},
			NoRefundDescription: "No refund - less than 7 days before check-in",
		},
		PolicySuperStrict: {
			Tiers:               []RefundTier{},
			NoRefundDescription: "This booking is non-refundable",
		},
	}
}

// Validate проверяет корректность таблицы тарифов
// Вызывается при загрузке таблицы из settings store
func (t RefundTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidRefundTable)
	}

	for policy, rule := range t {
		prev := math.MaxInt
		for _, tier := range rule.Tiers {
			if tier.Percent < 0 || tier.Percent > 100 {
				return fmt.Errorf("%w: policy %s: percent %d out of range", ErrInvalidRefundTable, policy, tier.Percent)
			}
			if tier.MinDaysBefore >= prev {
				return fmt.Errorf("%w: policy %s: tiers must be ordered by minDaysBefore descending", ErrInvalidRefundTable, policy)
			}
			prev = tier.MinDaysBefore
		}
	}

	return nil
}

// CalculateRefund computes the refund amount for a renter-initiated
// cancellation under the given policy. daysUntilCheckin may be negative
// (check-in already passed). The result is rounded to whole currency units.
//
// Owner-initiated cancellations do not go through the table: the caller
// always refunds 100% regardless of policy or timing.
func (t RefundTable) CalculateRefund(totalAmount float64, policy CancellationPolicy, daysUntilCheckin int) (float64, error) {
	percent, _, err := t.refundFor(policy, daysUntilCheckin)
	if err != nil {
		return 0, err
	}
	if totalAmount < 0 {
		return 0, ErrNegativeAmount
	}

	return math.Round(totalAmount * float64(percent) / 100), nil
}

// DescribeRefund returns the refund percentage and the human-readable
// justification for the same inputs. Shares tier selection with
// CalculateRefund, so the description can never disagree with the amount.
func (t RefundTable) DescribeRefund(policy CancellationPolicy, daysUntilCheckin int) (int, string, error) {
	return t.refundFor(policy, daysUntilCheckin)
}

// refundFor единая точка выбора тарифа для суммы и описания
func (t RefundTable) refundFor(policy CancellationPolicy, daysUntilCheckin int) (int, string, error) {
	rule, ok := t[policy]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	for _, tier := range rule.Tiers {
		if daysUntilCheckin >= tier.MinDaysBefore {
			return tier.Percent, tier.Description, nil
		}
	}

	return 0, rule.NoRefundDescription, nil
}
