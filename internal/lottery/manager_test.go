package lottery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, *recordingJournal) {
	journal := &recordingJournal{}
	return NewManager(Options{Clock: newFakeClock(testNow), Journal: journal}), journal
}

func TestManagerStartsEmpty(t *testing.T) {
	m, _ := newTestManager()
	assert.Empty(t, m.Lotteries())
}

func TestManagerCreateLottery(t *testing.T) {
	m, journal := newTestManager()
	ctx := context.Background()

	first, err := m.CreateLottery(ctx, owner, "lottery_1", testEndDate, testPrice, 3)
	require.NoError(t, err)
	assert.Len(t, m.Lotteries(), 1)
	assert.Equal(t, owner, first.Owner())

	second, err := m.CreateLottery(ctx, user1, "lottery_1", testEndDate, testPrice, 3)
	require.NoError(t, err)

	all := m.Lotteries()
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Len(t, journal.changes, 2)

	got, ok := m.Lottery(second.ID())
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = m.Lottery("missing")
	assert.False(t, ok)
}

func TestManagerCreateLotteryWhitespaceName(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.CreateLottery(context.Background(), owner, " ", testEndDate, testPrice, 3)
	require.NoError(t, err)
	assert.Len(t, m.Lotteries(), 1)
}

func TestManagerCreateLotteryRejects(t *testing.T) {
	cases := []struct {
		name       string
		lottery    string
		endDate    time.Time
		price      uint64
		maxEntries uint32
		reason     string
	}{
		{"empty name", "", testEndDate, testPrice, 3, "The lottery must have a name!"},
		{"past end date", "lottery_1", time.Unix(10000, 0), testPrice, 3, "End date should be in the future!"},
		{"zero price", "lottery_1", testEndDate, 0, 3, "The price of entrance should be not 0!"},
		{"zero entries", "lottery_1", testEndDate, testPrice, 0, "The user should be entrance at least once!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, journal := newTestManager()
			_, err := m.CreateLottery(context.Background(), owner, tc.lottery, tc.endDate, tc.price, tc.maxEntries)
			require.Error(t, err)
			assert.Equal(t, tc.reason, err.Error())
			assert.Empty(t, m.Lotteries())
			assert.Empty(t, journal.changes)
		})
	}
}

func TestManagerRestore(t *testing.T) {
	m, _ := newTestManager()
	later := Snapshot{Record: Record{ID: "b", Owner: owner, Config: testConfig(1), CreatedAt: testNow.Add(time.Hour)}}
	earlier := Snapshot{
		Record:  Record{ID: "a", Owner: owner, Config: testConfig(1), CreatedAt: testNow, Balance: testPrice},
		Tickets: []Ticket{{Holder: user1, Seq: 0}},
	}

	assert.Equal(t, 2, m.Restore([]Snapshot{later, earlier}))
	assert.Equal(t, 0, m.Restore([]Snapshot{earlier}))

	all := m.Lotteries()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID())
	assert.Equal(t, "b", all[1].ID())
	assert.Equal(t, []Identity{user1}, all[0].Players())

	_, err := all[0].Enter(context.Background(), user1, 1, testPrice)
	assert.ErrorIs(t, err, ErrTooManyEntries)
}
