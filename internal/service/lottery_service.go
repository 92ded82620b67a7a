package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raffleworks/lottery-service/internal/config"
	"github.com/raffleworks/lottery-service/internal/domain"
	"github.com/raffleworks/lottery-service/internal/events"
	"github.com/raffleworks/lottery-service/internal/lottery"
	"github.com/raffleworks/lottery-service/internal/observability"
	"github.com/raffleworks/lottery-service/internal/repository"
)

var (
	// ErrLotteryNotFound is returned for an unknown lottery ID.
	ErrLotteryNotFound = errors.New("lottery not found")
	// ErrInvalidWinnerSlot is returned for a winner slot other than 1 or 2.
	ErrInvalidWinnerSlot = errors.New("winner slot must be 1 or 2")
)

// LotteryService coordinates lottery workflows. Every mutation is committed
// through the repository before it becomes visible and before events go out.
type LotteryService struct {
	manager    *lottery.Manager
	repo       repository.LotteryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// LotteryDependencies bundles collaborators of the lottery service.
type LotteryDependencies struct {
	Repo       repository.LotteryRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      lottery.Clock
}

// LotteryOptions builds the lottery core options for cfg.
func LotteryOptions(cfg config.LotteryConfig) lottery.Options {
	policy := lottery.PayoutPolicy{CommissionRate: cfg.CommissionRate, Winner1Share: cfg.Winner1Share}
	opts := lottery.Options{
		Payout:          &policy,
		EnforceDeadline: cfg.EnforceDeadline,
	}
	if cfg.RandomSource == config.RandomSourceHash {
		opts.Random = lottery.NewHashSource([]byte(cfg.RandomSeed))
	}
	return opts
}

// NewLotteryService constructs the service. opts usually comes from LotteryOptions;
// its journal and clock are taken from deps.
func NewLotteryService(opts lottery.Options, deps LotteryDependencies) *LotteryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Journal = deps.Repo
	if deps.Clock != nil {
		opts.Clock = deps.Clock
	}
	now := time.Now
	if opts.Clock != nil {
		now = opts.Clock.Now
	}
	return &LotteryService{
		manager:    lottery.NewManager(opts),
		repo:       deps.Repo,
		dispatcher: deps.Dispatcher,
		logger:     logger.With(zap.String("component", "lottery")),
		metrics:    deps.Metrics,
		now:        now,
	}
}

// Restore loads every persisted lottery into the catalog.
func (s *LotteryService) Restore(ctx context.Context) (int, error) {
	snaps, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load lotteries: %w", err)
	}
	n := s.manager.Restore(snaps)
	s.logger.Info("lotteries restored", zap.Int("count", n))
	return n, nil
}

// CreateLotteryInput describes a new lottery.
type CreateLotteryInput struct {
	Name              string
	EndDate           time.Time
	PriceOfEntrance   uint64
	MaxEntriesPerUser uint32
}

// Create registers a lottery owned by caller.
func (s *LotteryService) Create(ctx context.Context, caller lottery.Identity, input CreateLotteryInput) (*lottery.Lottery, error) {
	l, err := s.manager.CreateLottery(ctx, caller, input.Name, input.EndDate, input.PriceOfEntrance, input.MaxEntriesPerUser)
	if err != nil {
		s.reject("create", "", caller, err)
		return nil, err
	}
	s.accept("create", l.ID(), caller)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLotteryCreated,
		LotteryID: l.ID(),
		Actor:     caller,
		Payload: events.LotteryCreatedPayload{
			Name:              input.Name,
			EndDate:           input.EndDate,
			PriceOfEntrance:   input.PriceOfEntrance,
			MaxEntriesPerUser: input.MaxEntriesPerUser,
		},
	})
	return l, nil
}

// List returns every lottery in creation order.
func (s *LotteryService) List() []*lottery.Lottery {
	return s.manager.Lotteries()
}

// Get returns the lottery with id.
func (s *LotteryService) Get(id string) (*lottery.Lottery, error) {
	l, ok := s.manager.Lottery(id)
	if !ok {
		return nil, ErrLotteryNotFound
	}
	return l, nil
}

// Enter buys a ticket in lottery id for caller. The returned entry carries
// the caller's ticket count as committed.
func (s *LotteryService) Enter(ctx context.Context, id string, caller lottery.Identity, ticketCount int, payment uint64) (lottery.Entry, error) {
	l, err := s.Get(id)
	if err != nil {
		return lottery.Entry{}, err
	}
	entry, err := l.Enter(ctx, caller, ticketCount, payment)
	if err != nil {
		s.reject("enter", id, caller, err)
		return lottery.Entry{}, err
	}
	s.accept("enter", id, caller, zap.Int("seq", entry.Seq))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLotteryEntered,
		LotteryID: id,
		Actor:     caller,
		Payload: events.LotteryEnteredPayload{
			Seq:     entry.Seq,
			Payment: payment,
			Entries: entry.Entries,
		},
	})
	return entry, nil
}

// PickWinner closes lottery id and pays its prizes.
func (s *LotteryService) PickWinner(ctx context.Context, id string, caller lottery.Identity) (lottery.Settlement, error) {
	l, err := s.Get(id)
	if err != nil {
		return lottery.Settlement{}, err
	}
	settlement, err := l.PickWinner(ctx, caller)
	if err != nil {
		s.reject("pick_winner", id, caller, err)
		return lottery.Settlement{}, err
	}
	s.accept("pick_winner", id, caller,
		zap.String("winner1", string(settlement.Winner1)),
		zap.String("winner2", string(settlement.Winner2)),
		zap.Uint64("pool", settlement.Pool))
	s.metrics.RecordPayout(string(lottery.PayoutPrizeWinner1), settlement.Prize1)
	if settlement.HasWinner2() {
		s.metrics.RecordPayout(string(lottery.PayoutPrizeWinner2), settlement.Prize2)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventWinnersPicked,
		LotteryID: id,
		Actor:     caller,
		Payload: events.WinnersPickedPayload{
			Winner1:    settlement.Winner1,
			Winner2:    settlement.Winner2,
			Pool:       settlement.Pool,
			Prize1:     settlement.Prize1,
			Prize2:     settlement.Prize2,
			Commission: settlement.Commission,
		},
	})
	return settlement, nil
}

// Winner returns the winner in slot 1 or 2 of lottery id.
func (s *LotteryService) Winner(id string, slot int) (lottery.Identity, error) {
	l, err := s.Get(id)
	if err != nil {
		return "", err
	}
	switch slot {
	case 1:
		return l.Winner1()
	case 2:
		return l.Winner2()
	default:
		return "", ErrInvalidWinnerSlot
	}
}

// WithdrawCommission pays the owner's commission of lottery id.
func (s *LotteryService) WithdrawCommission(ctx context.Context, id string, caller lottery.Identity) (lottery.Payout, error) {
	l, err := s.Get(id)
	if err != nil {
		return lottery.Payout{}, err
	}
	payout, err := l.WithdrawCommission(ctx, caller)
	if err != nil {
		s.reject("withdraw_commission", id, caller, err)
		return lottery.Payout{}, err
	}
	s.accept("withdraw_commission", id, caller, zap.Uint64("amount", payout.Amount))
	s.metrics.RecordPayout(string(lottery.PayoutCommission), payout.Amount)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventCommissionWithdrawn,
		LotteryID: id,
		Actor:     caller,
		Payload:   events.CommissionWithdrawnPayload{Amount: payout.Amount},
	})
	return payout, nil
}

// CommissionWithdrawn reports whether lottery id has paid its commission.
func (s *LotteryService) CommissionWithdrawn(id string) (bool, error) {
	l, err := s.Get(id)
	if err != nil {
		return false, err
	}
	return l.OwnerWithdrawnCommission(), nil
}

// Players lists the ticket holders of lottery id in entry order.
func (s *LotteryService) Players(id string) ([]lottery.Identity, error) {
	l, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return l.Players(), nil
}

// EntriesFor counts the tickets identity holds in lottery id.
func (s *LotteryService) EntriesFor(id string, identity lottery.Identity) (int, error) {
	l, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return l.EntriesFor(identity), nil
}

// Payouts lists the transfers made out of lottery id.
func (s *LotteryService) Payouts(ctx context.Context, id string) ([]domain.PayoutRecord, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	records, err := s.repo.ListPayouts(ctx, id)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.PayoutRecord{}
	}
	return records, nil
}

func (s *LotteryService) accept(op, id string, caller lottery.Identity, fields ...zap.Field) {
	s.metrics.RecordOperation(op, "ok")
	s.logger.Info(op,
		append([]zap.Field{zap.String("lottery_id", id), zap.String("caller", string(caller))}, fields...)...)
}

func (s *LotteryService) reject(op, id string, caller lottery.Identity, err error) {
	kind, ok := lottery.KindOf(err)
	if !ok {
		s.metrics.RecordOperation(op, "error")
		s.logger.Error(op+" failed",
			zap.String("lottery_id", id), zap.String("caller", string(caller)), zap.Error(err))
		return
	}
	s.metrics.RecordOperation(op, string(kind))
	s.logger.Debug(op+" rejected",
		zap.String("lottery_id", id), zap.String("caller", string(caller)), zap.String("reason", err.Error()))
}

func (s *LotteryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
