package lottery

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	testNow     = time.Date(2022, 10, 1, 12, 0, 0, 0, time.UTC)
	testEndDate = time.Unix(1667253600, 0).UTC()
)

const (
	owner = Identity("owner")
	user1 = Identity("user1")
	user2 = Identity("user2")

	testPrice = uint64(100000000)
)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceSource replays fixed draws, each reduced mod n.
type sequenceSource struct {
	draws []int
	next  int
}

func (s *sequenceSource) Intn(n int) (int, error) {
	if s.next >= len(s.draws) {
		return 0, errors.New("sequence exhausted")
	}
	v := s.draws[s.next] % n
	s.next++
	return v, nil
}

// recordingJournal keeps every change; fail makes the next commit fail.
type recordingJournal struct {
	mu      sync.Mutex
	changes []Change
	fail    error
}

func (j *recordingJournal) Commit(_ context.Context, c Change) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail != nil {
		err := j.fail
		j.fail = nil
		return err
	}
	j.changes = append(j.changes, c)
	return nil
}

func (j *recordingJournal) payouts() []Payout {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Payout
	for _, c := range j.changes {
		out = append(out, c.Payouts...)
	}
	return out
}

func testConfig(maxEntries uint32) Config {
	return Config{
		Name:              "lottery_1",
		EndDate:           testEndDate,
		PriceOfEntrance:   testPrice,
		MaxEntriesPerUser: maxEntries,
	}
}
