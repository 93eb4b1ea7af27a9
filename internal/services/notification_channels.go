package services

import (
	"context"

	"go.uber.org/zap"

	"rental-system/internal/repositories"
	"rental-system/pkg/websocket"
)

// InAppChannel доставляет уведомление в интерфейс: живым соединениям через
// WebSocket-хаб и в персистентный ящик пользователя (чтобы оффлайн-адресат
// увидел его после входа).
type InAppChannel struct {
	hub       *websocket.Hub
	inboxRepo repositories.NotificationInboxRepositoryInterface
}

func NewInAppChannel(hub *websocket.Hub, inboxRepo repositories.NotificationInboxRepositoryInterface) *InAppChannel {
	return &InAppChannel{hub: hub, inboxRepo: inboxRepo}
}

func (c *InAppChannel) Name() string { return "inapp" }

func (c *InAppChannel) Send(ctx context.Context, recipient Recipient, message RenderedMessage) error {
	notification := repositories.InboxNotification{
		ID:          message.ID,
		UserID:      recipient.UserID,
		Role:        string(recipient.Role),
		OrderID:     message.OrderID,
		OrderNumber: message.OrderNumber,
		FromStatus:  string(message.FromStatus),
		ToStatus:    string(message.ToStatus),
		Message:     message.Text,
		CreatedAt:   message.CreatedAt,
	}
	if err := c.inboxRepo.Append(ctx, recipient.UserID, notification); err != nil {
		return err
	}
	return c.hub.SendMessageToUser(recipient.UserID, notification, "notification")
}

// LogChannel — заглушка транспорта (email/sms/push). Реальная доставка по
// проводу вне зоны ответственности этого сервиса; заглушка пишет в лог,
// чтобы поток был виден в разработке и тестах.
type LogChannel struct {
	name   string
	logger *zap.Logger
}

func NewLogChannel(name string, logger *zap.Logger) *LogChannel {
	return &LogChannel{name: name, logger: logger}
}

func (c *LogChannel) Name() string { return c.name }

func (c *LogChannel) Send(_ context.Context, recipient Recipient, message RenderedMessage) error {
	c.logger.Info("уведомление передано транспорту",
		zap.String("channel", c.name),
		zap.Uint64("userID", recipient.UserID),
		zap.String("role", string(recipient.Role)),
		zap.String("order", message.OrderNumber),
		zap.String("text", message.Text),
	)
	return nil
}
