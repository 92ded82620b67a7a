package lottery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager creates lotteries and keeps the append-only catalog.
type Manager struct {
	mu      sync.RWMutex
	opts    Options
	newID   func() string
	catalog []*Lottery
	byID    map[string]*Lottery
}

// NewManager returns an empty manager whose lotteries share opts.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:  opts.withDefaults(),
		newID: uuid.NewString,
		byID:  make(map[string]*Lottery),
	}
}

// CreateLottery validates the parameters and appends a new lottery owned by
// caller. Names need not be unique.
func (m *Manager) CreateLottery(ctx context.Context, caller Identity, name string, endDate time.Time, priceOfEntrance uint64, maxEntriesPerUser uint32) (*Lottery, error) {
	cfg := Config{
		Name:              name,
		EndDate:           endDate,
		PriceOfEntrance:   priceOfEntrance,
		MaxEntriesPerUser: maxEntriesPerUser,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := New(ctx, m.newID(), caller, cfg, m.opts)
	if err != nil {
		return nil, err
	}
	m.catalog = append(m.catalog, l)
	m.byID[l.ID()] = l
	return l, nil
}

// Lotteries returns the catalog in creation order.
func (m *Manager) Lotteries() []*Lottery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Lottery, len(m.catalog))
	copy(out, m.catalog)
	return out
}

// Lottery looks a lottery up by handle.
func (m *Manager) Lottery(id string) (*Lottery, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[id]
	return l, ok
}

// Restore appends persisted lotteries to the catalog, ordered by creation
// time. Handles already in the catalog are skipped.
func (m *Manager) Restore(snaps []Snapshot) int {
	sorted := make([]Snapshot, len(snaps))
	copy(sorted, snaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Record.CreatedAt.Before(sorted[j].Record.CreatedAt)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for _, snap := range sorted {
		if _, exists := m.byID[snap.Record.ID]; exists {
			continue
		}
		l := Restore(snap, m.opts)
		m.catalog = append(m.catalog, l)
		m.byID[l.ID()] = l
		restored++
	}
	return restored
}
