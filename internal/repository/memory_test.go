package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffleworks/lottery-service/internal/domain"
	"github.com/raffleworks/lottery-service/internal/lottery"
)

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Name: "Ada", Email: " Ada@Example.com ", PasswordHash: "x", Status: domain.UserStatusActive}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	got, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	err = repo.Create(ctx, &domain.User{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryLotteryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryLotteryRepository()
	ctx := context.Background()
	clock := lottery.ClockFunc(func() time.Time { return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC) })

	m := lottery.NewManager(lottery.Options{Clock: clock, Journal: repo, Random: lottery.NewHashSource([]byte("r"))})
	l, err := m.CreateLottery(ctx, "owner", "lottery_1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 100, 2)
	require.NoError(t, err)
	_, err = l.Enter(ctx, "a", 1, 100)
	require.NoError(t, err)
	_, err = l.Enter(ctx, "b", 1, 100)
	require.NoError(t, err)
	_, err = l.PickWinner(ctx, "owner")
	require.NoError(t, err)
	_, err = l.WithdrawCommission(ctx, "owner")
	require.NoError(t, err)

	snaps, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, l.Snapshot(), snaps[0])

	payouts, err := repo.ListPayouts(ctx, l.ID())
	require.NoError(t, err)
	require.Len(t, payouts, 3)
	var total uint64
	for _, p := range payouts {
		total += p.Amount
	}
	assert.Equal(t, uint64(200), total)
	assert.Equal(t, lottery.PayoutCommission, payouts[2].Kind)
}

func TestMemoryLotteryRepositoryRejectsUnstorableAmounts(t *testing.T) {
	repo := NewMemoryLotteryRepository()
	ctx := context.Background()
	clock := lottery.ClockFunc(func() time.Time { return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC) })
	m := lottery.NewManager(lottery.Options{Clock: clock, Journal: repo})
	end := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := m.CreateLottery(ctx, "owner", "huge", end, 1<<63, 1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	assert.Empty(t, m.Lotteries())

	// The price fits but a second ticket would overflow the balance.
	l, err := m.CreateLottery(ctx, "owner", "big", end, 1<<62, 1)
	require.NoError(t, err)
	_, err = l.Enter(ctx, "a", 1, 1<<62)
	require.NoError(t, err)
	_, err = l.Enter(ctx, "b", 1, 1<<62)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	assert.Equal(t, []lottery.Identity{"a"}, l.Players())
	assert.Equal(t, uint64(1<<62), l.Balance())
}
