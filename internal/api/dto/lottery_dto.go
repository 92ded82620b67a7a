package dto

import (
	"math"
	"time"

	"github.com/raffleworks/lottery-service/internal/domain"
	"github.com/raffleworks/lottery-service/internal/lottery"
)

// CreateLotteryRequest payload. EndDate is in unix seconds.
type CreateLotteryRequest struct {
	Name              string `json:"name"`
	EndDate           int64  `json:"end_date"`
	PriceOfEntrance   uint64 `json:"price_of_entrance"`
	MaxEntriesPerUser uint32 `json:"max_entries_per_user"`
}

// Problems lists fields that cannot be stored. Amounts are persisted as
// signed 64-bit integers.
func (r CreateLotteryRequest) Problems() map[string]any {
	problems := map[string]any{}
	if r.PriceOfEntrance > math.MaxInt64 {
		problems["price_of_entrance"] = "must not exceed 9223372036854775807"
	}
	return problems
}

// EnterRequest payload. TicketCount is accepted for compatibility; one
// ticket is bought per call.
type EnterRequest struct {
	TicketCount int    `json:"ticket_count"`
	Payment     uint64 `json:"payment"`
}

// LotterySummary response.
type LotterySummary struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Owner             lottery.Identity `json:"owner"`
	CreatedAt         int64            `json:"created_at"`
	EndDate           int64            `json:"end_date"`
	PickedAt          *int64           `json:"picked_at,omitempty"`
	PriceOfEntrance   uint64           `json:"price_of_entrance"`
	MaxEntriesPerUser uint32           `json:"max_entries_per_user"`
	Ended             bool             `json:"ended"`
	Balance           uint64           `json:"balance"`
}

// NewLotterySummary builds the response for l.
func NewLotterySummary(l *lottery.Lottery) LotterySummary {
	info := l.Info()
	out := LotterySummary{
		ID:                l.ID(),
		Name:              info.Name,
		Owner:             info.Owner,
		CreatedAt:         info.CreatedAt.Unix(),
		EndDate:           info.EndDate.Unix(),
		PriceOfEntrance:   info.PriceOfEntrance,
		MaxEntriesPerUser: info.MaxEntriesPerUser,
		Ended:             info.Ended,
		Balance:           l.Balance(),
	}
	if !info.PickedAt.IsZero() {
		picked := info.PickedAt.Unix()
		out.PickedAt = &picked
	}
	return out
}

// TicketResponse describes a bought ticket.
type TicketResponse struct {
	Holder  lottery.Identity `json:"holder"`
	Seq     int              `json:"seq"`
	Entries int              `json:"entries"`
}

// SettlementResponse describes a draw.
type SettlementResponse struct {
	Winner1    lottery.Identity `json:"winner1"`
	Winner2    lottery.Identity `json:"winner2,omitempty"`
	Pool       uint64           `json:"pool"`
	Prize1     uint64           `json:"prize1"`
	Prize2     uint64           `json:"prize2"`
	Commission uint64           `json:"commission"`
}

// NewSettlementResponse builds the response for s.
func NewSettlementResponse(s lottery.Settlement) SettlementResponse {
	return SettlementResponse{
		Winner1:    s.Winner1,
		Winner2:    s.Winner2,
		Pool:       s.Pool,
		Prize1:     s.Prize1,
		Prize2:     s.Prize2,
		Commission: s.Commission,
	}
}

// PayoutResponse describes a transfer out of a lottery.
type PayoutResponse struct {
	To        lottery.Identity   `json:"to"`
	Amount    uint64             `json:"amount"`
	Kind      lottery.PayoutKind `json:"kind"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
}

// NewPayoutResponse builds the response for a persisted payout.
func NewPayoutResponse(p domain.PayoutRecord) PayoutResponse {
	out := PayoutResponse{To: p.To, Amount: p.Amount, Kind: p.Kind}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		out.CreatedAt = &created
	}
	return out
}
