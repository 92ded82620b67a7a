package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/raffleworks/lottery-service/internal/config"
	"github.com/raffleworks/lottery-service/internal/events"
)

// Publisher fans an encoded message out on a channel.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v any) error
}

// NotificationService logs notable lottery events and relays every event to
// subscribers outside the process.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil, in which
// case Relay is a no-op.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes the logging handlers.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLotteryCreated, n.handleLotteryCreated)
	n.dispatcher.Subscribe(events.EventWinnersPicked, n.handleWinnersPicked)
}

// Dispatcher returns the dispatcher the service listens on.
func (n *NotificationService) Dispatcher() events.Dispatcher {
	return n.dispatcher
}

func (n *NotificationService) handleLotteryCreated(_ context.Context, event events.Event) error {
	n.logger.Info("LotteryCreated", zap.String("lottery_id", event.LotteryID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleWinnersPicked(_ context.Context, event events.Event) error {
	n.logger.Info("WinnersPicked", zap.String("lottery_id", event.LotteryID), zap.Any("payload", event.Payload))
	return nil
}

// Relay publishes event as JSON on the configured channel.
func (n *NotificationService) Relay(ctx context.Context, event events.Event) error {
	if n.publisher == nil || strings.TrimSpace(n.cfg.EventsChannel) == "" {
		return nil
	}
	if err := n.publisher.PublishJSON(ctx, n.cfg.EventsChannel, event); err != nil {
		n.logger.Warn("relay event",
			zap.String("channel", n.cfg.EventsChannel),
			zap.String("lottery_id", event.LotteryID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	n.logger.Debug("event relayed",
		zap.String("channel", n.cfg.EventsChannel),
		zap.String("lottery_id", event.LotteryID),
		zap.String("event_type", string(event.Type)))
	return nil
}
