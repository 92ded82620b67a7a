package events

import (
	"time"

	"github.com/raffleworks/lottery-service/internal/lottery"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLotteryCreated      EventType = "lottery_created"
	EventLotteryEntered      EventType = "lottery_entered"
	EventWinnersPicked       EventType = "lottery_winners_picked"
	EventCommissionWithdrawn EventType = "lottery_commission_withdrawn"
)

// Event represents a domain event emitted after a committed lottery mutation.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	LotteryID string           `json:"lottery_id"`
	Actor     lottery.Identity `json:"actor"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// LotteryCreatedPayload payload.
type LotteryCreatedPayload struct {
	Name              string    `json:"name"`
	EndDate           time.Time `json:"end_date"`
	PriceOfEntrance   uint64    `json:"price_of_entrance"`
	MaxEntriesPerUser uint32    `json:"max_entries_per_user"`
}

// LotteryEnteredPayload payload.
type LotteryEnteredPayload struct {
	Seq     int    `json:"seq"`
	Payment uint64 `json:"payment"`
	Entries int    `json:"entries"`
}

// WinnersPickedPayload payload.
type WinnersPickedPayload struct {
	Winner1    lottery.Identity `json:"winner1"`
	Winner2    lottery.Identity `json:"winner2,omitempty"`
	Pool       uint64           `json:"pool"`
	Prize1     uint64           `json:"prize1"`
	Prize2     uint64           `json:"prize2"`
	Commission uint64           `json:"commission"`
}

// CommissionWithdrawnPayload payload.
type CommissionWithdrawnPayload struct {
	Amount uint64 `json:"amount"`
}
