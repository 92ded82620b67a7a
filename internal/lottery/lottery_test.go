package lottery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLottery(t *testing.T, maxEntries uint32, opts Options) (*Lottery, *fakeClock, *recordingJournal) {
	t.Helper()
	clock := newFakeClock(testNow)
	journal := &recordingJournal{}
	opts.Clock = clock
	opts.Journal = journal
	if opts.Random == nil {
		opts.Random = NewHashSource([]byte("test"))
	}
	l, err := New(context.Background(), "lottery-id", owner, testConfig(maxEntries), opts)
	require.NoError(t, err)
	return l, clock, journal
}

func TestNewLotteryInfo(t *testing.T) {
	l, _, journal := newTestLottery(t, 2, Options{})

	info := l.Info()
	assert.Equal(t, "lottery_1", info.Name)
	assert.Equal(t, owner, info.Owner)
	assert.Equal(t, testEndDate, info.EndDate)
	assert.True(t, info.EndDate.After(info.CreatedAt))
	assert.True(t, info.PickedAt.IsZero())
	assert.Equal(t, testPrice, info.PriceOfEntrance)
	assert.Equal(t, uint32(2), info.MaxEntriesPerUser)
	assert.False(t, info.Ended)

	assert.Empty(t, l.Players())
	assert.Equal(t, 0, l.EntriesFor("0x238523c12943F662CEE571FFe46C28C62B9f4272"))
	assert.False(t, l.OwnerWithdrawnCommission())
	require.Len(t, journal.changes, 1)
}

func TestNewLotteryRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty name", func(c *Config) { c.Name = "" }, ErrMissingName},
		{"end date in past", func(c *Config) { c.EndDate = time.Unix(10000, 0) }, ErrEndDateNotInFuture},
		{"end date now", func(c *Config) { c.EndDate = testNow }, ErrEndDateNotInFuture},
		{"zero price", func(c *Config) { c.PriceOfEntrance = 0 }, ErrZeroPrice},
		{"zero entries", func(c *Config) { c.MaxEntriesPerUser = 0 }, ErrZeroMaxEntries},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(3)
			tc.mutate(&cfg)
			journal := &recordingJournal{}
			_, err := New(context.Background(), "id", owner, cfg, Options{Clock: newFakeClock(testNow), Journal: journal})
			assert.ErrorIs(t, err, tc.want)
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, KindInvalidArgument, kind)
			assert.Empty(t, journal.changes)
		})
	}
}

func TestNewLotteryAcceptsWhitespaceName(t *testing.T) {
	cfg := testConfig(3)
	cfg.Name = " "
	journal := &recordingJournal{}

	l, err := New(context.Background(), "id", owner, cfg, Options{Clock: newFakeClock(testNow), Journal: journal})
	require.NoError(t, err)
	assert.Equal(t, " ", l.Info().Name)
	assert.Len(t, journal.changes, 1)
}

func TestEnter(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()

	tk, err := l.Enter(ctx, owner, 1, testPrice)
	require.NoError(t, err)
	assert.Equal(t, Ticket{Holder: owner, Seq: 0}, tk.Ticket)
	assert.Equal(t, 1, tk.Entries)
	assert.Equal(t, []Identity{owner}, l.Players())
	assert.Equal(t, 1, l.EntriesFor(owner))

	tk, err = l.Enter(ctx, owner, 1, testPrice)
	require.NoError(t, err)
	assert.Equal(t, 1, tk.Seq)
	assert.Equal(t, 2, tk.Entries)
	assert.Equal(t, 2, l.EntriesFor(owner))
	assert.Equal(t, 2*testPrice, l.Balance())
}

func TestEnterIncorrectAmount(t *testing.T) {
	l, _, journal := newTestLottery(t, 2, Options{})

	for _, amount := range []uint64{10000, testPrice + 1, 0} {
		_, err := l.Enter(context.Background(), user1, 1, amount)
		assert.ErrorIs(t, err, ErrIncorrectAmount)
		assert.Equal(t, "Incorrect amount!", err.Error())
	}
	assert.Empty(t, l.Players())
	assert.Len(t, journal.changes, 1)
}

func TestEnterQuota(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()

	_, err := l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)
	_, err = l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)

	_, err = l.Enter(ctx, user1, 1, testPrice)
	assert.ErrorIs(t, err, ErrTooManyEntries)
	assert.Equal(t, 2, l.EntriesFor(user1))
	assert.Len(t, l.Players(), 2)

	_, err = l.Enter(ctx, user2, 1, testPrice)
	assert.NoError(t, err)
}

func TestEnterRollsBackOnJournalFailure(t *testing.T) {
	l, _, journal := newTestLottery(t, 2, Options{})
	journal.fail = errors.New("disk full")

	_, err := l.Enter(context.Background(), user1, 1, testPrice)
	require.Error(t, err)
	assert.Empty(t, l.Players())
	assert.Equal(t, 0, l.EntriesFor(user1))
	assert.Zero(t, l.Balance())

	tk, err := l.Enter(context.Background(), user1, 1, testPrice)
	require.NoError(t, err)
	assert.Equal(t, 0, tk.Seq)
}

func TestEnterDeadlinePolicy(t *testing.T) {
	t.Run("not enforced", func(t *testing.T) {
		l, clock, _ := newTestLottery(t, 2, Options{})
		clock.Advance(testEndDate.Sub(testNow) + time.Hour)
		_, err := l.Enter(context.Background(), user1, 1, testPrice)
		assert.NoError(t, err)
	})
	t.Run("enforced", func(t *testing.T) {
		l, clock, _ := newTestLottery(t, 2, Options{EnforceDeadline: true})
		_, err := l.Enter(context.Background(), user1, 1, testPrice)
		require.NoError(t, err)

		clock.Advance(testEndDate.Sub(testNow))
		_, err = l.Enter(context.Background(), user2, 1, testPrice)
		assert.ErrorIs(t, err, ErrEntriesClosed)
		assert.Len(t, l.Players(), 1)
	})
}

func TestPickWinnerOnlyOwner(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	_, err := l.PickWinner(context.Background(), user1)
	assert.ErrorIs(t, err, ErrNotOwner)
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnauthorized, kind)
}

func TestPickWinnerEmptyPool(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	_, err := l.PickWinner(context.Background(), owner)
	assert.ErrorIs(t, err, ErrEmptyBalance)
	assert.Equal(t, "Balance is 0", err.Error())
	assert.False(t, l.Info().Ended)
}

func TestWinnersBeforeEnd(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	_, err := l.Winner1()
	assert.ErrorIs(t, err, ErrNotEnded)
	_, err = l.Winner2()
	assert.ErrorIs(t, err, ErrNotEnded)
	assert.Equal(t, "The lottery hasn't ended!", err.Error())
	_, err = l.Settlement()
	assert.ErrorIs(t, err, ErrNotEnded)
}

func TestPickWinnerTwice(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()
	_, err := l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)
	_, err = l.Enter(ctx, user2, 1, testPrice)
	require.NoError(t, err)

	first, err := l.PickWinner(ctx, owner)
	require.NoError(t, err)

	_, err = l.PickWinner(ctx, owner)
	assert.ErrorIs(t, err, ErrLotteryEnded)
	assert.Equal(t, "The lottery has ended!", err.Error())

	w1, err := l.Winner1()
	require.NoError(t, err)
	w2, err := l.Winner2()
	require.NoError(t, err)
	assert.Equal(t, first.Winner1, w1)
	assert.Equal(t, first.Winner2, w2)

	_, err = l.Enter(ctx, owner, 1, testPrice)
	assert.ErrorIs(t, err, ErrLotteryEnded)
	assert.Len(t, l.Players(), 2)
}

func TestFullLifecycle(t *testing.T) {
	l, clock, journal := newTestLottery(t, 2, Options{Random: &sequenceSource{draws: []int{2, 0}}})
	ctx := context.Background()

	for _, who := range []Identity{user1, user2, owner} {
		_, err := l.Enter(ctx, who, 1, testPrice)
		require.NoError(t, err)
	}
	assert.False(t, l.OwnerWithdrawnCommission())

	clock.Advance(time.Minute)
	s, err := l.PickWinner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, s.Winner1)
	assert.Equal(t, user1, s.Winner2)
	assert.False(t, l.OwnerWithdrawnCommission())
	assert.Equal(t, s.Commission, l.Balance())

	payout, err := l.WithdrawCommission(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, Payout{LotteryID: "lottery-id", To: owner, Amount: 30000000, Kind: PayoutCommission}, payout)
	assert.True(t, l.OwnerWithdrawnCommission())
	assert.Zero(t, l.Balance())

	_, err = l.WithdrawCommission(ctx, owner)
	assert.ErrorIs(t, err, ErrCommissionPaid)
	assert.Equal(t, "You received the commsision", err.Error())

	w1, err := l.Winner1()
	require.NoError(t, err)
	w2, err := l.Winner2()
	require.NoError(t, err)
	assert.NotEmpty(t, w1)
	assert.NotEmpty(t, w2)

	info := l.Info()
	assert.True(t, info.Ended)
	assert.True(t, info.PickedAt.After(info.CreatedAt))
	assert.Equal(t, testEndDate, info.EndDate)

	var total uint64
	for _, p := range journal.payouts() {
		total += p.Amount
	}
	assert.Equal(t, 3*testPrice, total)
}

func TestWithdrawCommissionGuards(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()

	_, err := l.WithdrawCommission(ctx, owner)
	assert.ErrorIs(t, err, ErrPickFirst)
	assert.Equal(t, "Please pick the winner first!", err.Error())

	_, err = l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)
	_, err = l.PickWinner(ctx, owner)
	require.NoError(t, err)

	_, err = l.WithdrawCommission(ctx, user1)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.False(t, l.OwnerWithdrawnCommission())
}

func TestPickWinnerSingleTicket(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()
	_, err := l.Enter(ctx, owner, 1, testPrice)
	require.NoError(t, err)

	s, err := l.PickWinner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, s.Winner1)
	assert.False(t, s.HasWinner2())

	w2, err := l.Winner2()
	require.NoError(t, err)
	assert.Empty(t, w2)
}

func TestPickWinnerJournalFailureKeepsOpen(t *testing.T) {
	l, _, journal := newTestLottery(t, 2, Options{})
	ctx := context.Background()
	_, err := l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)

	journal.fail = errors.New("connection reset")
	_, err = l.PickWinner(ctx, owner)
	require.Error(t, err)
	assert.False(t, l.Info().Ended)
	_, err = l.Winner1()
	assert.ErrorIs(t, err, ErrNotEnded)

	_, err = l.PickWinner(ctx, owner)
	assert.NoError(t, err)
}

func TestWithdrawCommissionJournalFailureKeepsUnpaid(t *testing.T) {
	l, _, journal := newTestLottery(t, 2, Options{})
	ctx := context.Background()
	for _, who := range []Identity{user1, user2} {
		_, err := l.Enter(ctx, who, 1, testPrice)
		require.NoError(t, err)
	}
	s, err := l.PickWinner(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, uint64(20000000), s.Commission)

	journal.fail = errors.New("connection reset")
	_, err = l.WithdrawCommission(ctx, owner)
	require.Error(t, err)
	assert.False(t, l.OwnerWithdrawnCommission())
	assert.Equal(t, s.Commission, l.Balance())

	payout, err := l.WithdrawCommission(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(20000000), payout.Amount)
	assert.True(t, l.OwnerWithdrawnCommission())
	assert.Zero(t, l.Balance())
}

func TestConcurrentEntriesRespectQuota(t *testing.T) {
	l, _, _ := newTestLottery(t, 3, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Enter(ctx, user1, 1, testPrice)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, l.EntriesFor(user1))
	assert.Len(t, l.Players(), 3)
}

func TestSnapshotRestore(t *testing.T) {
	l, _, _ := newTestLottery(t, 2, Options{})
	ctx := context.Background()
	_, err := l.Enter(ctx, user1, 1, testPrice)
	require.NoError(t, err)
	_, err = l.Enter(ctx, user2, 1, testPrice)
	require.NoError(t, err)
	_, err = l.PickWinner(ctx, owner)
	require.NoError(t, err)

	snap := l.Snapshot()
	restored := Restore(snap, Options{})

	assert.Equal(t, l.Info(), restored.Info())
	assert.Equal(t, l.Players(), restored.Players())
	assert.Equal(t, l.Balance(), restored.Balance())

	payout, err := restored.WithdrawCommission(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, snap.Settlement.Commission, payout.Amount)
}
