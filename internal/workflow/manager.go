package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Коды отказов контекстной проверки (см. также transitions.go).
const (
	ErrRoleNotAllowedByRule         = "ROLE_NOT_ALLOWED_BY_RULE"
	ErrInsufficientStatusPermission = "INSUFFICIENT_STATUS_PERMISSION"
	ErrOutsideWorkingHours          = "OUTSIDE_WORKING_HOURS"
	ErrDeviceNotAllowed             = "DEVICE_NOT_ALLOWED"
	ErrInternal                     = "INTERNAL_ERROR"
)

// CheckContext — явный набор опций проверки. Никаких string-map контекстов:
// неизвестная опция не скомпилируется.
type CheckContext struct {
	OrderStatus    *OrderStatus // статус заявки, если действие касается заявки
	DeviceType     string       // "mobile", "desktop", "tablet"; пусто = неизвестно
	At             *time.Time   // переопределение часов для проверки окна (тесты)
	ScheduleExempt bool         // явное освобождение от окна рабочего времени
	IP             string
}

// CheckResult — вердикт контекстной проверки.
type CheckResult struct {
	Allowed            bool     `json:"allowed"`
	Code               string   `json:"code,omitempty"`
	Reason             string   `json:"reason,omitempty"`
	MissingPermissions []string `json:"missingPermissions,omitempty"`
}

// AccessStats — агрегаты по журналу проверок.
type AccessStats struct {
	TotalRequests      int             `json:"totalRequests"`
	SuccessfulRequests int             `json:"successfulRequests"`
	FailedRequests     int             `json:"failedRequests"`
	SuccessRate        float64         `json:"successRate"`
	TopResources       []ResourceCount `json:"topResources"`
	TopActions         []ResourceCount `json:"topActions"`
}

type ResourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PermissionManager — сервис контекстных проверок. Владеет списком правил и
// кольцевым журналом; создается один раз при старте приложения и передается
// зависимостям явно (никаких синглтонов).
type PermissionManager struct {
	mu     sync.Mutex
	rules  []PermissionRule
	index  ruleIndex
	hours  WorkingHours
	log    []PermissionLogEntry // новые записи в начале
	store  AuditStore           // может быть nil
	clock  func() time.Time
	logger *zap.Logger
}

type ManagerOption func(*PermissionManager)

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *PermissionManager) { m.clock = clock }
}

// WithRules заменяет базовый набор правил.
func WithRules(rules []PermissionRule) ManagerOption {
	return func(m *PermissionManager) { m.rules = rules }
}

func NewPermissionManager(hours WorkingHours, store AuditStore, logger *zap.Logger, opts ...ManagerOption) *PermissionManager {
	m := &PermissionManager{
		rules:  DefaultRules(),
		hours:  hours,
		store:  store,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.index = indexRules(m.rules)
	return m
}

// CheckPermission — главная проверка "может ли {user, role} сделать {action}
// над {resource} в данном контексте". Порядок каскада фиксирован, первая
// неудача выигрывает. Каждый вызов (успех или отказ) попадает в журнал.
func (m *PermissionManager) CheckPermission(ctx context.Context, userID uint64, role Role, action, resource string, checkCtx *CheckContext) (result CheckResult) {
	// Fail-closed: неожиданная паника внутри каскада не должна уронить
	// вызывающего и не должна ничего разрешить.
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("паника при проверке прав",
				zap.Any("panic", r),
				zap.String("action", action),
				zap.String("resource", resource),
			)
			result = CheckResult{Allowed: false, Code: ErrInternal, Reason: "Error al verificar permisos"}
		}
	}()

	if checkCtx == nil {
		checkCtx = &CheckContext{}
	}
	result = m.evaluate(role, action, resource, checkCtx)
	m.appendLog(ctx, userID, role, action, resource, checkCtx, result)
	return result
}

func (m *PermissionManager) evaluate(role Role, action, resource string, checkCtx *CheckContext) CheckResult {
	m.mu.Lock()
	index := m.index
	hours := m.hours
	m.mu.Unlock()

	// 1. Фильтр по правилам.
	if !index.roleAllowedByRules(resource, action, role) {
		return CheckResult{
			Allowed: false,
			Code:    ErrRoleNotAllowedByRule,
			Reason:  "El rol " + string(role) + " no está autorizado para " + action + " sobre " + resource,
		}
	}

	// 2. Фильтр по статусу заявки.
	if checkCtx.OrderStatus != nil {
		if missing := MissingForStatus(role, *checkCtx.OrderStatus); len(missing) > 0 {
			missingStr := make([]string, len(missing))
			for i, cap := range missing {
				missingStr[i] = string(cap)
			}
			return CheckResult{
				Allowed:            false,
				Code:               ErrInsufficientStatusPermission,
				Reason:             "Permisos insuficientes para una orden en estado " + string(*checkCtx.OrderStatus),
				MissingPermissions: missingStr,
			}
		}
	}

	// 3. Окно рабочего времени.
	if !checkCtx.ScheduleExempt {
		now := m.clock()
		if checkCtx.At != nil {
			now = *checkCtx.At
		}
		if !hours.Contains(now) {
			return CheckResult{
				Allowed: false,
				Code:    ErrOutsideWorkingHours,
				Reason:  "Operación fuera del horario laboral permitido",
			}
		}
	}

	// 4. Девайсная проверка. Необъявленный девайс не совпадает ни с одним
	// требуемым классом: для ограниченного действия это отказ, а не пропуск.
	if ok, required := index.deviceAllowedByRules(resource, action, checkCtx.DeviceType); !ok {
		return CheckResult{
			Allowed:            false,
			Code:               ErrDeviceNotAllowed,
			Reason:             "Esta acción sólo está permitida desde dispositivo móvil",
			MissingPermissions: required,
		}
	}

	return CheckResult{Allowed: true}
}

// CheckFunctionalityPermission — упрощенная проверка "всё или ничего" для
// именованной функциональности. Отдельные подпроверки не журналируются.
func (m *PermissionManager) CheckFunctionalityPermission(role Role, functionality string) CheckResult {
	required, ok := functionalityRequirements[functionality]
	if !ok {
		return CheckResult{Allowed: false, Code: ErrInternal, Reason: "Funcionalidad desconocida: " + functionality}
	}
	var missing []string
	for _, cap := range required {
		if !HasCapability(role, cap) {
			missing = append(missing, string(cap))
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Allowed:            false,
			Code:               ErrInsufficientStatusPermission,
			Reason:             "El rol " + string(role) + " no cubre la funcionalidad " + functionality,
			MissingPermissions: missing,
		}
	}
	return CheckResult{Allowed: true}
}

// SetRuleEnabled включает/выключает правило по имени. Возвращает false,
// если правило не найдено.
func (m *PermissionManager) SetRuleEnabled(name string, enabled bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].Name == name {
			m.rules[i].Enabled = enabled
			m.index = indexRules(m.rules)
			return true
		}
	}
	return false
}

func (m *PermissionManager) appendLog(ctx context.Context, userID uint64, role Role, action, resource string, checkCtx *CheckContext, result CheckResult) {
	entry := PermissionLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Role:       string(role),
		Action:     action,
		Resource:   resource,
		Timestamp:  m.clock(),
		Allowed:    result.Allowed,
		DeviceType: checkCtx.DeviceType,
		IP:         checkCtx.IP,
	}
	if !result.Allowed {
		entry.Reason = null.StringFrom(result.Reason)
	}

	m.mu.Lock()
	m.log = append([]PermissionLogEntry{entry}, m.log...)
	if len(m.log) > MaxLogEntries {
		m.log = m.log[:MaxLogEntries]
	}
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	if err := m.store.Append(ctx, entry); err != nil {
		// Персистентность журнала best-effort: вердикт уже принят.
		m.logger.Warn("не удалось сохранить запись журнала проверок", zap.Error(err))
	}
}

// Logs возвращает копию журнала (новые записи первыми). При userID != nil —
// только записи этого пользователя.
func (m *PermissionManager) Logs(userID *uint64) []PermissionLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PermissionLogEntry, 0, len(m.log))
	for _, entry := range m.log {
		if userID != nil && entry.UserID != *userID {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Stats считает агрегаты по текущему содержимому журнала.
func (m *PermissionManager) Stats() AccessStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := AccessStats{TotalRequests: len(m.log)}
	resources := make(map[string]int)
	actions := make(map[string]int)
	for _, entry := range m.log {
		if entry.Allowed {
			stats.SuccessfulRequests++
		} else {
			stats.FailedRequests++
		}
		resources[entry.Resource]++
		actions[entry.Action]++
	}
	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
	}
	stats.TopResources = topCounts(resources, 5)
	stats.TopActions = topCounts(actions, 5)
	return stats
}

func topCounts(counts map[string]int, limit int) []ResourceCount {
	out := make([]ResourceCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, ResourceCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
