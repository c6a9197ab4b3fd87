package core

import (
	"fmt"
	"time"
)

const (
	// MaxInstallments bounds how many months a single purchase can span.
	MaxInstallments = 120
	// maxYear is the last year a YYYY-MM-DD date can carry.
	maxYear = 9999
)

// Installment is one entry of a purchase split across months.
type Installment struct {
	Index   int
	DueDate Date
	Amount  Money
}

// MonthAdvancer moves a date forward by whole calendar months.
type MonthAdvancer interface {
	Advance(d Date, months int) Date
}

// RolloverAdvancer keeps the day-of-month and lets overflow roll into the
// following month, so Jan 31 + 1 month is Mar 2 (Mar 3 outside leap years).
type RolloverAdvancer struct{}

func (RolloverAdvancer) Advance(d Date, months int) Date {
	return Date{Time: d.AddDate(0, months, 0)}
}

// ClampAdvancer keeps the day-of-month when the target month has it and
// otherwise uses the last day of the target month.
type ClampAdvancer struct{}

func (ClampAdvancer) Advance(d Date, months int) Date {
	first := time.Date(d.Year(), time.Month(d.Month())+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// SplitPolicy decides the amount of each installment.
type SplitPolicy interface {
	Amount(total Money, installments, index int) Money
}

// DropRemainder gives every installment total/n rounded to cents. The rounding
// drift is lost: 100.00 in 3 installments is 33.33 three times.
type DropRemainder struct{}

func (DropRemainder) Amount(total Money, installments, _ int) Money {
	return total.Split(installments)
}

// LastAbsorbsRemainder gives the final installment whatever is left so the
// installments add up to the total.
type LastAbsorbsRemainder struct{}

func (LastAbsorbsRemainder) Amount(total Money, installments, index int) Money {
	share := total.Split(installments)
	if index == installments {
		return total.Sub(share.Mul(installments - 1))
	}
	return share
}

// Schedule computes installment plans with a given pair of policies.
type Schedule struct {
	Advancer MonthAdvancer
	Split    SplitPolicy
}

// DefaultSchedule uses calendar rollover and drops the rounding remainder.
func DefaultSchedule() Schedule {
	return Schedule{Advancer: RolloverAdvancer{}, Split: DropRemainder{}}
}

// Compute returns one entry per index from start to total, dated
// (index - start) months after base.
func (s Schedule) Compute(base Date, total, start int, amount Money) ([]Installment, error) {
	if total < 1 || total > MaxInstallments {
		return nil, fmt.Errorf("%w: total %d outside 1..%d", ErrInvalidInstallments, total, MaxInstallments)
	}
	if start < 1 || start > total {
		return nil, fmt.Errorf("%w: start %d outside 1..%d", ErrInvalidInstallments, start, total)
	}
	if base.IsZero() {
		return nil, ErrInvalidDate
	}

	advancer, split := s.Advancer, s.Split
	if advancer == nil {
		advancer = RolloverAdvancer{}
	}
	if split == nil {
		split = DropRemainder{}
	}

	if last := advancer.Advance(base, total-start); last.Year() > maxYear {
		return nil, fmt.Errorf("%w: installment %d would fall after %d-12", ErrInvalidDate, total, maxYear)
	}

	if total == 1 {
		return []Installment{{Index: 1, DueDate: base, Amount: amount}}, nil
	}

	out := make([]Installment, 0, total-start+1)
	for i := start; i <= total; i++ {
		out = append(out, Installment{
			Index:   i,
			DueDate: advancer.Advance(base, i-start),
			Amount:  split.Amount(amount, total, i),
		})
	}
	return out, nil
}

// ComputeInstallmentSchedule is Compute with the default policies.
func ComputeInstallmentSchedule(base Date, total, start int, amount Money) ([]Installment, error) {
	return DefaultSchedule().Compute(base, total, start, amount)
}
