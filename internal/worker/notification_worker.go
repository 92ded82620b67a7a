package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raffleworks/lottery-service/internal/events"
	"github.com/raffleworks/lottery-service/internal/service"
)

const relayTimeout = 5 * time.Second

// NotificationWorker relays lottery events off the request path. Events are
// queued by a dispatcher subscription and published by a single goroutine in
// the order they were queued.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	stop          chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
}

// StartNotificationWorker registers the notification handlers and starts the
// relay loop. A full queue drops the event with a warning rather than block
// the publisher.
func StartNotificationWorker(notificationService *service.NotificationService, queueSize int, logger *zap.Logger) *NotificationWorker {
	if notificationService == nil {
		return nil
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	w := &NotificationWorker{
		notifications: notificationService,
		logger:        logger.With(zap.String("component", "notification_worker")),
		queue:         make(chan events.Event, queueSize),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	notificationService.RegisterHandlers()
	if dispatcher := notificationService.Dispatcher(); dispatcher != nil {
		dispatcher.SubscribeAll(w.enqueue)
	}
	go w.run()
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case <-w.stop:
		return nil
	default:
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for {
		select {
		case event := <-w.queue:
			w.relay(event)
		case <-w.stop:
			for {
				select {
				case event := <-w.queue:
					w.relay(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) relay(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()
	_ = w.notifications.Relay(ctx, event)
}

// Stop relays what is already queued, then returns. Events published after
// Stop are ignored.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
