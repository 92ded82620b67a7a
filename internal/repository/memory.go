package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/raffleworks/lottery-service/internal/domain"
	"github.com/raffleworks/lottery-service/internal/lottery"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository returns a process-local UserRepository, used when no
// database is configured.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

type memoryLotteryRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]lottery.Record
	tickets map[string][]lottery.Ticket
	settled map[string]lottery.Settlement
	payouts []domain.PayoutRecord
}

// NewMemoryLotteryRepository returns a process-local LotteryRepository.
func NewMemoryLotteryRepository() LotteryRepository {
	return &memoryLotteryRepository{
		records: make(map[string]lottery.Record),
		tickets: make(map[string][]lottery.Ticket),
		settled: make(map[string]lottery.Settlement),
	}
}

func (r *memoryLotteryRepository) Commit(_ context.Context, change lottery.Change) error {
	if err := checkAmounts(change); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := change.Record.ID
	if _, exists := r.records[id]; !exists {
		r.order = append(r.order, id)
	}
	r.records[id] = change.Record
	r.tickets[id] = append(r.tickets[id], change.NewTickets...)
	if change.Settlement != nil {
		r.settled[id] = *change.Settlement
	}
	now := time.Now()
	for _, p := range change.Payouts {
		r.payouts = append(r.payouts, domain.PayoutRecord{Payout: p, CreatedAt: now})
	}
	return nil
}

func (r *memoryLotteryRepository) LoadAll(_ context.Context) ([]lottery.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lottery.Snapshot, 0, len(r.order))
	for _, id := range r.order {
		snap := lottery.Snapshot{
			Record:  r.records[id],
			Tickets: append([]lottery.Ticket(nil), r.tickets[id]...),
		}
		if s, ok := r.settled[id]; ok {
			s := s
			snap.Settlement = &s
		}
		out = append(out, snap)
	}
	return out, nil
}

func (r *memoryLotteryRepository) ListPayouts(_ context.Context, lotteryID string) ([]domain.PayoutRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.PayoutRecord
	for _, p := range r.payouts {
		if p.LotteryID == lotteryID {
			out = append(out, p)
		}
	}
	return out, nil
}
