package lottery

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// PayoutKind identifies what a payout settles.
type PayoutKind string

const (
	PayoutPrizeWinner1 PayoutKind = "PRIZE_WINNER1"
	PayoutPrizeWinner2 PayoutKind = "PRIZE_WINNER2"
	PayoutCommission   PayoutKind = "COMMISSION"
)

// Payout is a transfer out of a lottery balance.
type Payout struct {
	LotteryID string     `json:"lottery_id"`
	To        Identity   `json:"to"`
	Amount    uint64     `json:"amount"`
	Kind      PayoutKind `json:"kind"`
}

// PayoutPolicy splits a closed pool between the owner and the winners.
type PayoutPolicy struct {
	// CommissionRate is the owner's fraction of the pool, in [0, 1].
	CommissionRate decimal.Decimal
	// Winner1Share is winner1's fraction of what remains after commission, in [0, 1].
	Winner1Share decimal.Decimal
}

// DefaultPayoutPolicy takes a 10% commission and splits the rest evenly.
func DefaultPayoutPolicy() PayoutPolicy {
	return PayoutPolicy{
		CommissionRate: decimal.New(1, -1),
		Winner1Share:   decimal.New(5, -1),
	}
}

// Validate checks both fractions are within [0, 1].
func (p PayoutPolicy) Validate() error {
	one := decimal.NewFromInt(1)
	if p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThan(one) {
		return fmt.Errorf("commission rate %s out of range [0,1]", p.CommissionRate)
	}
	if p.Winner1Share.IsNegative() || p.Winner1Share.GreaterThan(one) {
		return fmt.Errorf("winner1 share %s out of range [0,1]", p.Winner1Share)
	}
	return nil
}

// Split divides pool into commission and prizes. Amounts are floored and the
// rounding remainder goes to the last prize, so the three always sum to pool.
func (p PayoutPolicy) Split(pool uint64, twoWinners bool) (commission, prize1, prize2 uint64) {
	commission = fraction(pool, p.CommissionRate)
	rest := pool - commission
	if !twoWinners {
		return commission, rest, 0
	}
	prize1 = fraction(rest, p.Winner1Share)
	return commission, prize1, rest - prize1
}

func fraction(amount uint64, rate decimal.Decimal) uint64 {
	v := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).Mul(rate).Floor()
	out := v.BigInt()
	if !out.IsUint64() {
		return amount
	}
	if r := out.Uint64(); r < amount {
		return r
	}
	return amount
}

// Settlement is the outcome of a draw over a frozen ledger.
type Settlement struct {
	Slot1      int      `json:"slot1"`
	Slot2      int      `json:"slot2"`
	Winner1    Identity `json:"winner1"`
	Winner2    Identity `json:"winner2,omitempty"`
	Pool       uint64   `json:"pool"`
	Commission uint64   `json:"commission"`
	Prize1     uint64   `json:"prize1"`
	Prize2     uint64   `json:"prize2"`
}

// HasWinner2 reports whether a second slot was drawn.
func (s Settlement) HasWinner2() bool {
	return s.Slot2 >= 0
}

var errEmptyLedger = errors.New("settle: empty ledger")

// Settle draws winners over ledger and computes the payouts.
func Settle(ledger *Ledger, rnd RandomSource, policy PayoutPolicy) (Settlement, error) {
	n := ledger.Len()
	if n == 0 {
		return Settlement{}, errEmptyLedger
	}
	slot1, slot2, err := drawSlots(n, rnd)
	if err != nil {
		return Settlement{}, err
	}

	s := Settlement{
		Slot1:   slot1,
		Slot2:   slot2,
		Winner1: ledger.At(slot1).Holder,
		Pool:    ledger.Balance(),
	}
	if slot2 >= 0 {
		s.Winner2 = ledger.At(slot2).Holder
	}
	s.Commission, s.Prize1, s.Prize2 = policy.Split(s.Pool, s.HasWinner2())
	return s, nil
}

// drawSlots picks slot1 uniformly over n and, when n > 1, a distinct slot2
// uniformly over the remaining n-1 slots. slot2 is -1 when n == 1.
func drawSlots(n int, rnd RandomSource) (int, int, error) {
	slot1, err := rnd.Intn(n)
	if err != nil {
		return 0, 0, fmt.Errorf("draw winner1: %w", err)
	}
	if n == 1 {
		return slot1, -1, nil
	}
	slot2, err := rnd.Intn(n - 1)
	if err != nil {
		return 0, 0, fmt.Errorf("draw winner2: %w", err)
	}
	if slot2 >= slot1 {
		slot2++
	}
	return slot1, slot2, nil
}

// prizePayouts lists the non-zero prize transfers of s.
func (s Settlement) prizePayouts(lotteryID string) []Payout {
	out := make([]Payout, 0, 2)
	if s.Prize1 > 0 {
		out = append(out, Payout{LotteryID: lotteryID, To: s.Winner1, Amount: s.Prize1, Kind: PayoutPrizeWinner1})
	}
	if s.HasWinner2() && s.Prize2 > 0 {
		out = append(out, Payout{LotteryID: lotteryID, To: s.Winner2, Amount: s.Prize2, Kind: PayoutPrizeWinner2})
	}
	return out
}
