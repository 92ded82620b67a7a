// Package lottery implements time-boxed raffles: a participant ledger per
// lottery, a single-shot winner draw with payout settlement, and the catalog
// of lotteries.
//
// Every mutation of a Lottery runs under its write lock and is committed
// through a Journal before it becomes visible, so a rejected or failed call
// leaves no trace. Reads take the read lock and see a consistent state.
package lottery

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config is fixed at creation.
type Config struct {
	Name              string    `json:"name"`
	EndDate           time.Time `json:"end_date"`
	PriceOfEntrance   uint64    `json:"price_of_entrance"`
	MaxEntriesPerUser uint32    `json:"max_entries_per_user"`
}

// Validate checks cfg against the creation rules at time now.
func (c Config) Validate(now time.Time) error {
	if c.Name == "" {
		return ErrMissingName
	}
	if !c.EndDate.After(now) {
		return ErrEndDateNotInFuture
	}
	if c.PriceOfEntrance == 0 {
		return ErrZeroPrice
	}
	if c.MaxEntriesPerUser == 0 {
		return ErrZeroMaxEntries
	}
	return nil
}

// Record is the persisted state of a lottery, excluding its tickets.
type Record struct {
	ID                       string    `json:"id"`
	Owner                    Identity  `json:"owner"`
	Config                   Config    `json:"config"`
	CreatedAt                time.Time `json:"created_at"`
	PickedAt                 time.Time `json:"picked_at"`
	Ended                    bool      `json:"ended"`
	OwnerWithdrawnCommission bool      `json:"owner_withdrawn_commission"`
	Winner1                  Identity  `json:"winner1,omitempty"`
	Winner2                  Identity  `json:"winner2,omitempty"`
	Balance                  uint64    `json:"balance"`
}

// Info is the public summary of a lottery.
type Info struct {
	Name              string
	Owner             Identity
	CreatedAt         time.Time
	EndDate           time.Time
	PickedAt          time.Time
	PriceOfEntrance   uint64
	MaxEntriesPerUser uint32
	Ended             bool
}

// Snapshot is a deep copy of a lottery's full state.
type Snapshot struct {
	Record     Record
	Tickets    []Ticket
	Settlement *Settlement
}

// Options configures lotteries. Nil fields fall back to defaults.
type Options struct {
	Clock   Clock
	Random  RandomSource
	Payout  *PayoutPolicy
	Journal Journal
	// EnforceDeadline rejects entries once the end date has passed.
	EnforceDeadline bool
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Random == nil {
		o.Random = CryptoSource()
	}
	if o.Payout == nil {
		p := DefaultPayoutPolicy()
		o.Payout = &p
	}
	if o.Journal == nil {
		o.Journal = nopJournal{}
	}
	return o
}

// Lottery is a single raffle. It is safe for concurrent use.
type Lottery struct {
	mu         sync.RWMutex
	opts       Options
	record     Record
	ledger     *Ledger
	settlement *Settlement
}

// New validates cfg, commits a new open lottery owned by owner and returns it.
func New(ctx context.Context, id string, owner Identity, cfg Config, opts Options) (*Lottery, error) {
	opts = opts.withDefaults()
	if err := opts.Payout.Validate(); err != nil {
		return nil, err
	}
	now := opts.Clock.Now()
	if err := cfg.Validate(now); err != nil {
		return nil, err
	}

	l := &Lottery{
		opts: opts,
		record: Record{
			ID:        id,
			Owner:     owner,
			Config:    cfg,
			CreatedAt: now,
		},
		ledger: NewLedger(cfg.PriceOfEntrance),
	}
	if err := opts.Journal.Commit(ctx, Change{Record: l.record}); err != nil {
		return nil, fmt.Errorf("commit lottery %s: %w", id, err)
	}
	return l, nil
}

// Restore rebuilds a lottery from a persisted snapshot without committing.
func Restore(snap Snapshot, opts Options) *Lottery {
	l := &Lottery{
		opts:   opts.withDefaults(),
		record: snap.Record,
		ledger: restoreLedger(snap.Record.Config.PriceOfEntrance, snap.Tickets),
	}
	if snap.Settlement != nil {
		s := *snap.Settlement
		l.settlement = &s
	}
	return l
}

// ID returns the lottery handle.
func (l *Lottery) ID() string {
	return l.record.ID
}

// Owner returns the identity that created the lottery.
func (l *Lottery) Owner() Identity {
	return l.record.Owner
}

// Entry is an accepted ticket together with the holder's ticket count right
// after it was committed.
type Entry struct {
	Ticket
	Entries int
}

// Enter buys one ticket for caller. The int parameter is a reserved ticket
// count; every accepted call appends exactly one ticket.
func (l *Lottery) Enter(ctx context.Context, caller Identity, _ int, payment uint64) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.record.Config
	if l.record.Ended {
		return Entry{}, ErrLotteryEnded
	}
	if l.opts.EnforceDeadline && !l.opts.Clock.Now().Before(cfg.EndDate) {
		return Entry{}, ErrEntriesClosed
	}
	if payment != cfg.PriceOfEntrance {
		return Entry{}, ErrIncorrectAmount
	}
	if uint64(l.ledger.Count(caller))+1 > uint64(cfg.MaxEntriesPerUser) {
		return Entry{}, ErrTooManyEntries
	}

	n := l.ledger.Len()
	ticket := l.ledger.Append(caller)
	next := l.record
	next.Balance += cfg.PriceOfEntrance

	if err := l.opts.Journal.Commit(ctx, Change{Record: next, NewTickets: []Ticket{ticket}}); err != nil {
		l.ledger.truncate(n)
		return Entry{}, fmt.Errorf("commit entry: %w", err)
	}
	l.record = next
	return Entry{Ticket: ticket, Entries: l.ledger.Count(caller)}, nil
}

// Players returns the holder of every ticket in insertion order.
func (l *Lottery) Players() []Identity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ledger.Holders()
}

// EntriesFor returns how many tickets identity holds.
func (l *Lottery) EntriesFor(identity Identity) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ledger.Count(identity)
}

// PickWinner closes the lottery: it draws the winners over the frozen ledger
// and pays both prizes. Only the owner may call it, and only once.
func (l *Lottery) PickWinner(ctx context.Context, caller Identity) (Settlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.record.Owner {
		return Settlement{}, ErrNotOwner
	}
	if l.record.Ended {
		return Settlement{}, ErrLotteryEnded
	}
	if l.ledger.Len() == 0 {
		return Settlement{}, ErrEmptyBalance
	}

	rnd := l.opts.Random
	if scoped, ok := rnd.(ScopedSource); ok {
		rnd = scoped.ForLottery(l.record.ID)
	}
	s, err := Settle(l.ledger, rnd, *l.opts.Payout)
	if err != nil {
		return Settlement{}, err
	}
	payouts := s.prizePayouts(l.record.ID)

	next := l.record
	next.Ended = true
	next.PickedAt = l.opts.Clock.Now()
	next.Winner1 = s.Winner1
	next.Winner2 = s.Winner2
	for _, p := range payouts {
		next.Balance -= p.Amount
	}

	if err := l.opts.Journal.Commit(ctx, Change{Record: next, Settlement: &s, Payouts: payouts}); err != nil {
		return Settlement{}, fmt.Errorf("commit settlement: %w", err)
	}
	l.record = next
	l.settlement = &s
	return s, nil
}

// Winner1 returns the first winner once the lottery has ended.
func (l *Lottery) Winner1() (Identity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.record.Ended {
		return "", ErrNotEnded
	}
	return l.record.Winner1, nil
}

// Winner2 returns the second winner once the lottery has ended. It is empty
// when the pool held a single ticket.
func (l *Lottery) Winner2() (Identity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.record.Ended {
		return "", ErrNotEnded
	}
	return l.record.Winner2, nil
}

// WithdrawCommission pays the owner's commission. Owner only, once, after close.
func (l *Lottery) WithdrawCommission(ctx context.Context, caller Identity) (Payout, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.record.Owner {
		return Payout{}, ErrNotOwner
	}
	if !l.record.Ended {
		return Payout{}, ErrPickFirst
	}
	if l.record.OwnerWithdrawnCommission {
		return Payout{}, ErrCommissionPaid
	}

	var amount uint64
	if l.settlement != nil {
		amount = l.settlement.Commission
	}
	payout := Payout{LotteryID: l.record.ID, To: l.record.Owner, Amount: amount, Kind: PayoutCommission}

	next := l.record
	next.OwnerWithdrawnCommission = true
	next.Balance -= amount

	var payouts []Payout
	if amount > 0 {
		payouts = []Payout{payout}
	}
	if err := l.opts.Journal.Commit(ctx, Change{Record: next, Payouts: payouts}); err != nil {
		return Payout{}, fmt.Errorf("commit commission: %w", err)
	}
	l.record = next
	return payout, nil
}

// OwnerWithdrawnCommission reports whether the commission has been paid.
func (l *Lottery) OwnerWithdrawnCommission() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.record.OwnerWithdrawnCommission
}

// Info returns the public summary.
func (l *Lottery) Info() Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r := l.record
	return Info{
		Name:              r.Config.Name,
		Owner:             r.Owner,
		CreatedAt:         r.CreatedAt,
		EndDate:           r.Config.EndDate,
		PickedAt:          r.PickedAt,
		PriceOfEntrance:   r.Config.PriceOfEntrance,
		MaxEntriesPerUser: r.Config.MaxEntriesPerUser,
		Ended:             r.Ended,
	}
}

// Settlement returns the draw outcome once the lottery has ended.
func (l *Lottery) Settlement() (Settlement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.record.Ended || l.settlement == nil {
		return Settlement{}, ErrNotEnded
	}
	return *l.settlement, nil
}

// Balance returns the amount still held by the lottery.
func (l *Lottery) Balance() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.record.Balance
}

// Snapshot returns a deep copy of the full state.
func (l *Lottery) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := Snapshot{Record: l.record, Tickets: l.ledger.Tickets()}
	if l.settlement != nil {
		s := *l.settlement
		snap.Settlement = &s
	}
	return snap
}
