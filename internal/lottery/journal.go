package lottery

import (
	"context"
	"time"
)

// Change is one committed mutation of a lottery.
type Change struct {
	Record     Record
	NewTickets []Ticket
	Settlement *Settlement
	Payouts    []Payout
}

// Journal durably applies a Change. Commit must apply the record, the new
// tickets and the payouts atomically or not at all; a returned error leaves
// the lottery untouched.
type Journal interface {
	Commit(ctx context.Context, change Change) error
}

type nopJournal struct{}

func (nopJournal) Commit(context.Context, Change) error { return nil }

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
