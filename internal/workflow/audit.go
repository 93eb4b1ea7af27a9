package workflow

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
)

// MaxLogEntries — жесткий потолок журнала проверок (кольцевой буфер).
const MaxLogEntries = 1000

// PermissionLogEntry — одна запись журнала проверок. Только плоские
// примитивные поля: формат на диске должен оставаться стабильным.
type PermissionLogEntry struct {
	ID         string      `json:"id"`
	UserID     uint64      `json:"userId"`
	Role       string      `json:"role"`
	Action     string      `json:"action"`
	Resource   string      `json:"resource"`
	Timestamp  time.Time   `json:"timestamp"`
	Allowed    bool        `json:"allowed"`
	Reason     null.String `json:"reason,omitempty"`
	DeviceType string      `json:"deviceType,omitempty"`
	IP         string      `json:"ip,omitempty"`
}

// AuditStore — внешнее хранилище журнала. Запись best-effort: ошибка
// хранилища логируется, но никогда не меняет вердикт проверки.
// Известное ограничение: два независимых процесса, пишущие в одно
// хранилище, могут перемешивать записи — глобальный порядок не обещается.
type AuditStore interface {
	Append(ctx context.Context, entry PermissionLogEntry) error
}
