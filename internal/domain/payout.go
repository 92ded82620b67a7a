package domain

import (
	"time"

	"github.com/raffleworks/lottery-service/internal/lottery"
)

// PayoutRecord is a persisted transfer out of a lottery.
type PayoutRecord struct {
	lottery.Payout
	CreatedAt time.Time
}
