package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raffleworks/lottery-service/internal/domain"
	"github.com/raffleworks/lottery-service/internal/lottery"
)

// LotteryRepository persists lotteries. It is the Journal every lottery
// commits through, and the source the catalog is restored from.
type LotteryRepository interface {
	lottery.Journal
	LoadAll(ctx context.Context) ([]lottery.Snapshot, error)
	ListPayouts(ctx context.Context, lotteryID string) ([]domain.PayoutRecord, error)
}

// ErrAmountOutOfRange rejects a change carrying an amount that does not fit
// the BIGINT columns.
var ErrAmountOutOfRange = errors.New("amount exceeds storable range")

func checkAmounts(change lottery.Change) error {
	if change.Record.Config.PriceOfEntrance > math.MaxInt64 || change.Record.Balance > math.MaxInt64 {
		return ErrAmountOutOfRange
	}
	for _, p := range change.Payouts {
		if p.Amount > math.MaxInt64 {
			return ErrAmountOutOfRange
		}
	}
	return nil
}

type lotteryRepository struct {
	pool *pgxpool.Pool
}

// NewLotteryRepository returns a Postgres-backed implementation.
func NewLotteryRepository(pool *pgxpool.Pool) LotteryRepository {
	return &lotteryRepository{pool: pool}
}

// Commit writes the record, new tickets and payouts in one transaction.
func (r *lotteryRepository) Commit(ctx context.Context, change lottery.Change) error {
	if err := checkAmounts(change); err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := upsertLottery(ctx, tx, change.Record, change.Settlement); err != nil {
		return err
	}

	const insertTicket = `INSERT INTO lottery_tickets (lottery_id, seq, holder) VALUES ($1,$2,$3)`
	for _, t := range change.NewTickets {
		if _, err := tx.Exec(ctx, insertTicket, change.Record.ID, t.Seq, string(t.Holder)); err != nil {
			return fmt.Errorf("insert ticket %d: %w", t.Seq, err)
		}
	}

	const insertPayout = `INSERT INTO lottery_payouts (lottery_id, recipient, amount, kind) VALUES ($1,$2,$3,$4)`
	for _, p := range change.Payouts {
		if _, err := tx.Exec(ctx, insertPayout, p.LotteryID, string(p.To), int64(p.Amount), string(p.Kind)); err != nil {
			return fmt.Errorf("insert payout %s: %w", p.Kind, err)
		}
	}

	return tx.Commit(ctx)
}

func upsertLottery(ctx context.Context, tx pgx.Tx, rec lottery.Record, settlement *lottery.Settlement) error {
	var pickedAt *time.Time
	if !rec.PickedAt.IsZero() {
		t := rec.PickedAt
		pickedAt = &t
	}
	var settlementJSON *string
	if settlement != nil {
		raw, err := json.Marshal(settlement)
		if err != nil {
			return fmt.Errorf("encode settlement: %w", err)
		}
		s := string(raw)
		settlementJSON = &s
	}

	const query = `
        INSERT INTO lotteries (id, owner, name, end_date, price_of_entrance, max_entries_per_user, created_at,
            picked_at, ended, commission_withdrawn, winner1, winner2, balance, settlement)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        ON CONFLICT (id) DO UPDATE SET
            picked_at=EXCLUDED.picked_at,
            ended=EXCLUDED.ended,
            commission_withdrawn=EXCLUDED.commission_withdrawn,
            winner1=EXCLUDED.winner1,
            winner2=EXCLUDED.winner2,
            balance=EXCLUDED.balance,
            settlement=COALESCE(EXCLUDED.settlement, lotteries.settlement)`
	_, err := tx.Exec(ctx, query,
		rec.ID,
		string(rec.Owner),
		rec.Config.Name,
		rec.Config.EndDate,
		int64(rec.Config.PriceOfEntrance),
		int32(rec.Config.MaxEntriesPerUser),
		rec.CreatedAt,
		pickedAt,
		rec.Ended,
		rec.OwnerWithdrawnCommission,
		string(rec.Winner1),
		string(rec.Winner2),
		int64(rec.Balance),
		settlementJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert lottery %s: %w", rec.ID, err)
	}
	return nil
}

func (r *lotteryRepository) LoadAll(ctx context.Context) ([]lottery.Snapshot, error) {
	const query = `
        SELECT id, owner, name, end_date, price_of_entrance, max_entries_per_user, created_at,
               picked_at, ended, commission_withdrawn, winner1, winner2, balance, settlement
        FROM lotteries ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	snaps, err := scanLotteries(rows)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(snaps))
	for i := range snaps {
		index[snaps[i].Record.ID] = i
	}

	const ticketsQuery = `SELECT lottery_id, seq, holder FROM lottery_tickets ORDER BY lottery_id, seq`
	trows, err := r.pool.Query(ctx, ticketsQuery)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var (
			lotteryID string
			seq       int
			holder    string
		)
		if err := trows.Scan(&lotteryID, &seq, &holder); err != nil {
			return nil, err
		}
		i, ok := index[lotteryID]
		if !ok {
			continue
		}
		snaps[i].Tickets = append(snaps[i].Tickets, lottery.Ticket{Holder: lottery.Identity(holder), Seq: seq})
	}
	return snaps, trows.Err()
}

func scanLotteries(rows pgx.Rows) ([]lottery.Snapshot, error) {
	defer rows.Close()

	var result []lottery.Snapshot
	for rows.Next() {
		var (
			rec                     lottery.Record
			owner, winner1, winner2 string
			price, balance          int64
			maxEntries              int32
			pickedAt                *time.Time
			settlementJSON          []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&owner,
			&rec.Config.Name,
			&rec.Config.EndDate,
			&price,
			&maxEntries,
			&rec.CreatedAt,
			&pickedAt,
			&rec.Ended,
			&rec.OwnerWithdrawnCommission,
			&winner1,
			&winner2,
			&balance,
			&settlementJSON,
		); err != nil {
			return nil, err
		}
		rec.Owner = lottery.Identity(owner)
		rec.Winner1 = lottery.Identity(winner1)
		rec.Winner2 = lottery.Identity(winner2)
		rec.Config.PriceOfEntrance = uint64(price)
		rec.Config.MaxEntriesPerUser = uint32(maxEntries)
		rec.Balance = uint64(balance)
		if pickedAt != nil {
			rec.PickedAt = *pickedAt
		}

		snap := lottery.Snapshot{Record: rec}
		if len(settlementJSON) > 0 {
			var s lottery.Settlement
			if err := json.Unmarshal(settlementJSON, &s); err != nil {
				return nil, fmt.Errorf("decode settlement of %s: %w", rec.ID, err)
			}
			snap.Settlement = &s
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

func (r *lotteryRepository) ListPayouts(ctx context.Context, lotteryID string) ([]domain.PayoutRecord, error) {
	const query = `
        SELECT lottery_id, recipient, amount, kind, created_at
        FROM lottery_payouts WHERE lottery_id=$1 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PayoutRecord
	for rows.Next() {
		var (
			rec       domain.PayoutRecord
			recipient string
			kind      string
			amount    int64
		)
		if err := rows.Scan(&rec.LotteryID, &recipient, &amount, &kind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.To = lottery.Identity(recipient)
		rec.Kind = lottery.PayoutKind(kind)
		rec.Amount = uint64(amount)
		result = append(result, rec)
	}
	return result, rows.Err()
}
