package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/raffleworks/lottery-service/internal/api/dto"
	"github.com/raffleworks/lottery-service/internal/auth"
	"github.com/raffleworks/lottery-service/internal/lottery"
	"github.com/raffleworks/lottery-service/internal/repository"
	"github.com/raffleworks/lottery-service/internal/service"
	apperrors "github.com/raffleworks/lottery-service/pkg/util/errorutil"
)

// LotteriesHandler exposes the lottery registry.
type LotteriesHandler struct {
	service *service.LotteryService
}

// NewLotteriesHandler constructs handler.
func NewLotteriesHandler(lotteryService *service.LotteryService) *LotteriesHandler {
	return &LotteriesHandler{service: lotteryService}
}

// Create POST /lotteries.
func (h *LotteriesHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateLotteryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if problems := req.Problems(); len(problems) > 0 {
		return apperrors.NewValidationError("invalid payload", problems)
	}

	l, err := h.service.Create(c.UserContext(), caller, service.CreateLotteryInput{
		Name:              req.Name,
		EndDate:           time.Unix(req.EndDate, 0).UTC(),
		PriceOfEntrance:   req.PriceOfEntrance,
		MaxEntriesPerUser: req.MaxEntriesPerUser,
	})
	if err != nil {
		return mapLotteryError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLotterySummary(l)})
}

// List GET /lotteries.
func (h *LotteriesHandler) List(c *fiber.Ctx) error {
	all := h.service.List()
	items := make([]dto.LotterySummary, 0, len(all))
	for _, l := range all {
		items = append(items, dto.NewLotterySummary(l))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /lotteries/:id.
func (h *LotteriesHandler) Get(c *fiber.Ctx) error {
	l, err := h.service.Get(c.Params("id"))
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewLotterySummary(l)})
}

// Players GET /lotteries/:id/players.
func (h *LotteriesHandler) Players(c *fiber.Ctx) error {
	players, err := h.service.Players(c.Params("id"))
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": players})
}

// Entries GET /lotteries/:id/entries/:identity.
func (h *LotteriesHandler) Entries(c *fiber.Ctx) error {
	identity := lottery.Identity(c.Params("identity"))
	count, err := h.service.EntriesFor(c.Params("id"), identity)
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"identity": identity, "entries": count}})
}

// Enter POST /lotteries/:id/enter.
func (h *LotteriesHandler) Enter(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EnterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	id := c.Params("id")
	entry, err := h.service.Enter(c.UserContext(), id, caller, req.TicketCount, req.Payment)
	if err != nil {
		return mapLotteryError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketResponse{
		Holder:  entry.Holder,
		Seq:     entry.Seq,
		Entries: entry.Entries,
	}})
}

// PickWinner POST /lotteries/:id/pick-winner.
func (h *LotteriesHandler) PickWinner(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	settlement, err := h.service.PickWinner(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewSettlementResponse(settlement)})
}

// Winner GET /lotteries/:id/winners/:slot.
func (h *LotteriesHandler) Winner(c *fiber.Ctx) error {
	slot, err := strconv.Atoi(c.Params("slot"))
	if err != nil {
		return apperrors.NewValidationError(service.ErrInvalidWinnerSlot.Error(), nil)
	}
	winner, err := h.service.Winner(c.Params("id"), slot)
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"slot": slot, "winner": winner}})
}

// WithdrawCommission POST /lotteries/:id/commission/withdraw.
func (h *LotteriesHandler) WithdrawCommission(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	payout, err := h.service.WithdrawCommission(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": dto.PayoutResponse{To: payout.To, Amount: payout.Amount, Kind: payout.Kind}})
}

// CommissionStatus GET /lotteries/:id/commission.
func (h *LotteriesHandler) CommissionStatus(c *fiber.Ctx) error {
	withdrawn, err := h.service.CommissionWithdrawn(c.Params("id"))
	if err != nil {
		return mapLotteryError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"owner_withdrawn_commission": withdrawn}})
}

// Payouts GET /lotteries/:id/payouts.
func (h *LotteriesHandler) Payouts(c *fiber.Ctx) error {
	records, err := h.service.Payouts(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapLotteryError(err)
	}
	items := make([]dto.PayoutResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.NewPayoutResponse(r))
	}
	return c.JSON(fiber.Map{"data": items})
}

// mapLotteryError converts lottery rejections into DomainErrors carrying the
// rejection reason. Anything else is passed through to the error middleware.
func mapLotteryError(err error) error {
	switch {
	case errors.Is(err, service.ErrLotteryNotFound):
		return apperrors.NewNotFound("lottery", nil)
	case errors.Is(err, service.ErrInvalidWinnerSlot):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, repository.ErrAmountOutOfRange):
		return apperrors.NewDomainError("AMOUNT_OUT_OF_RANGE", repository.ErrAmountOutOfRange.Error(), http.StatusUnprocessableEntity, nil)
	}
	kind, ok := lottery.KindOf(err)
	if !ok {
		return err
	}
	details := map[string]any{"kind": string(kind)}
	switch kind {
	case lottery.KindInvalidArgument:
		return apperrors.NewValidationError(err.Error(), details)
	case lottery.KindInvalidPayment:
		return apperrors.NewDomainError("INVALID_PAYMENT", err.Error(), http.StatusUnprocessableEntity, details)
	case lottery.KindUnauthorized:
		return apperrors.NewForbidden(err.Error())
	default:
		return apperrors.NewConflict(err.Error(), details)
	}
}
