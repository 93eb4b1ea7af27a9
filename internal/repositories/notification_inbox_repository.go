package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// maxInboxEntries — потолок уведомлений на пользователя.
const maxInboxEntries = 100

// InboxNotification — сохраненное уведомление. Плоские примитивные поля,
// формат должен оставаться стабильным между версиями.
type InboxNotification struct {
	ID          string    `json:"id"`
	UserID      uint64    `json:"userId"`
	Role        string    `json:"role"`
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	IsRead      bool      `json:"isRead"`
}

type NotificationInboxRepositoryInterface interface {
	Append(ctx context.Context, userID uint64, notification InboxNotification) error
	GetByUser(ctx context.Context, userID uint64) ([]InboxNotification, error)
}

// RedisNotificationInboxRepository — по списку на пользователя, новые
// записи первыми, старые вытесняются после сотой.
type RedisNotificationInboxRepository struct {
	client *redis.Client
}

func NewRedisNotificationInboxRepository(client *redis.Client) NotificationInboxRepositoryInterface {
	return &RedisNotificationInboxRepository{client: client}
}

func inboxKey(userID uint64) string {
	return fmt.Sprintf("workflow:notifications:%d", userID)
}

func (r *RedisNotificationInboxRepository) Append(ctx context.Context, userID uint64, notification InboxNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("сериализация уведомления: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, inboxKey(userID), payload)
	pipe.LTrim(ctx, inboxKey(userID), 0, maxInboxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("запись уведомления в redis: %w", err)
	}
	return nil
}

func (r *RedisNotificationInboxRepository) GetByUser(ctx context.Context, userID uint64) ([]InboxNotification, error) {
	raw, err := r.client.LRange(ctx, inboxKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("чтение уведомлений из redis: %w", err)
	}

	notifications := make([]InboxNotification, 0, len(raw))
	for _, item := range raw {
		var n InboxNotification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}
