package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.SubscribeAll(func(_ context.Context, e Event) error {
		calls = append(calls, "all:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventLotteryEntered, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.LotteryID)
		return errors.New("boom")
	})
	d.Subscribe(EventLotteryEntered, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.LotteryID)
		return nil
	})
	d.Subscribe(EventWinnersPicked, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLotteryEntered, LotteryID: "l1"})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:l1", "second:l1", "all:lottery_entered"}, calls)
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventLotteryCreated, func(context.Context, Event) error { panic("bad handler") })
	d.SubscribeAll(func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLotteryCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lottery_created handler panicked: bad handler")
	assert.True(t, reached)
}

func TestDispatcherNoHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventCommissionWithdrawn}))
}
