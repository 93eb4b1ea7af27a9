package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"rental-system/internal/workflow"
)

const permissionLogKey = "workflow:permission_log"

// AuditLogRepositoryInterface — персистентный журнал проверок. Новые записи
// первыми, глобальный потолок workflow.MaxLogEntries.
type AuditLogRepositoryInterface interface {
	workflow.AuditStore
	GetAll(ctx context.Context) ([]workflow.PermissionLogEntry, error)
}

// RedisAuditLogRepository хранит журнал в Redis-списке. LPUSH+LTRIM идут
// одной транзакцией, поэтому форма списка не ломается; но при нескольких
// независимых процессах записи могут перемешиваться — глобальный порядок
// best-effort (это принятое ограничение, а не баг).
type RedisAuditLogRepository struct {
	client *redis.Client
}

func NewRedisAuditLogRepository(client *redis.Client) AuditLogRepositoryInterface {
	return &RedisAuditLogRepository{client: client}
}

func (r *RedisAuditLogRepository) Append(ctx context.Context, entry workflow.PermissionLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("сериализация записи журнала: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, permissionLogKey, payload)
	pipe.LTrim(ctx, permissionLogKey, 0, workflow.MaxLogEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("запись журнала в redis: %w", err)
	}
	return nil
}

func (r *RedisAuditLogRepository) GetAll(ctx context.Context) ([]workflow.PermissionLogEntry, error) {
	raw, err := r.client.LRange(ctx, permissionLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("чтение журнала из redis: %w", err)
	}

	entries := make([]workflow.PermissionLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry workflow.PermissionLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Битую запись пропускаем, журнал важнее целиком.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
