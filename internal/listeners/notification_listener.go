package listeners

import (
	"context"

	"go.uber.org/zap"

	"rental-system/internal/events"
	"rental-system/internal/services"
	"rental-system/pkg/eventbus"
)

// NotificationListener связывает шину событий с диспетчером уведомлений.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		logger:              logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderStatusChangedEventName, l.handleStatusChanged)
	l.logger.Info("NotificationListener подписан на событие 'order.status.changed'")
}

func (l *NotificationListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok {
		return nil
	}
	return l.notificationService.DispatchStatusChange(ctx, e)
}
