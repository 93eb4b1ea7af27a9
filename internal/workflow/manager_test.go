package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// workTime — вторник, 10:00, внутри окна 08-18.
var workTime = time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

func newTestManager(opts ...ManagerOption) *PermissionManager {
	opts = append([]ManagerOption{WithClock(func() time.Time { return workTime })}, opts...)
	return NewPermissionManager(DefaultWorkingHours, nil, zap.NewNop(), opts...)
}

func TestCheckPermissionAllowed(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 1, RoleOperationsManager, "approve", "orders", nil)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Code)
}

func TestCheckPermissionRoleNotAllowedByRule(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 1, RoleFinance, "approve", "orders", nil)
	assert.False(t, result.Allowed)
	assert.Equal(t, ErrRoleNotAllowedByRule, result.Code)
	assert.Contains(t, result.Reason, string(RoleFinance))
}

// Пара (resource, action) без правил проходит ролевой фильтр: правила
// аддитивны, их отсутствие ничего не запрещает.
func TestCheckPermissionNoMatchingRulesPasses(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 1, RoleTechnician, "view", "orders", nil)
	assert.True(t, result.Allowed)
}

func TestCheckPermissionStatusFilter(t *testing.T) {
	m := newTestManager()
	status := StatusReturned
	result := m.CheckPermission(context.Background(), 1, RoleWarehouseLead, "update", "orders", &CheckContext{
		OrderStatus: &status,
	})
	assert.False(t, result.Allowed)
	assert.Equal(t, ErrInsufficientStatusPermission, result.Code)
	assert.Contains(t, result.Reason, string(StatusReturned))
	assert.Contains(t, result.MissingPermissions, string(CapOrdersClose))
}

// Суперправо проходит статусный фильтр в любом статусе, включая финальные.
func TestAdminPassesStatusFilterEverywhere(t *testing.T) {
	m := newTestManager()
	for _, status := range AllStatuses {
		s := status
		result := m.CheckPermission(context.Background(), 1, RoleGeneralAdministrator, "update", "orders", &CheckContext{
			OrderStatus: &s,
		})
		assert.True(t, result.Allowed, "админ должен проходить в статусе %s", status)
	}
}

func TestCheckPermissionOutsideWorkingHours(t *testing.T) {
	m := newTestManager()
	night := time.Date(2026, time.March, 10, 20, 30, 0, 0, time.UTC)
	result := m.CheckPermission(context.Background(), 1, RoleOperationsManager, "approve", "orders", &CheckContext{
		At: &night,
	})
	assert.False(t, result.Allowed)
	assert.Equal(t, ErrOutsideWorkingHours, result.Code)
}

func TestScheduleExemptSkipsHoursCheck(t *testing.T) {
	m := newTestManager()
	night := time.Date(2026, time.March, 10, 23, 0, 0, 0, time.UTC)
	result := m.CheckPermission(context.Background(), 1, RoleOperationsManager, "approve", "orders", &CheckContext{
		At:             &night,
		ScheduleExempt: true,
	})
	assert.True(t, result.Allowed)
}

// Техник с десктопа не может загрузить доказательства: правило требует
// мобильное устройство, и текст отказа это объясняет.
func TestTechnicianEvidenceUploadFromDesktopDenied(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 4, RoleTechnician, "upload", "evidence", &CheckContext{
		DeviceType: "desktop",
	})
	assert.False(t, result.Allowed)
	assert.Equal(t, ErrDeviceNotAllowed, result.Code)
	assert.Contains(t, result.Reason, "móvil")
	assert.Contains(t, result.MissingPermissions, "mobile")
}

// Необъявленный девайс не обходит мобильное ограничение: нет заголовка —
// нет совпадения с требуемым классом, отказ (fail-closed).
func TestTechnicianEvidenceUploadWithoutDeclaredDeviceDenied(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 4, RoleTechnician, "upload", "evidence", &CheckContext{})
	assert.False(t, result.Allowed)
	assert.Equal(t, ErrDeviceNotAllowed, result.Code)
	assert.Contains(t, result.MissingPermissions, "mobile")
}

func TestTechnicianEvidenceUploadFromMobileAllowed(t *testing.T) {
	m := newTestManager()
	result := m.CheckPermission(context.Background(), 4, RoleTechnician, "upload", "evidence", &CheckContext{
		DeviceType: "mobile",
	})
	assert.True(t, result.Allowed)
}

// Повторная проверка с тем же контекстом дает тот же вердикт; каждый вызов
// при этом оставляет собственную запись в журнале.
func TestCheckPermissionIdempotent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	checkCtx := &CheckContext{DeviceType: "desktop"}

	first := m.CheckPermission(ctx, 4, RoleTechnician, "upload", "evidence", checkCtx)
	second := m.CheckPermission(ctx, 4, RoleTechnician, "upload", "evidence", checkCtx)
	assert.Equal(t, first, second)
	assert.Len(t, m.Logs(nil), 2)
}

// Журнал ограничен тысячей записей, новые первыми: после 1500 проверок
// остаются ровно последние 1000.
func TestLogBoundedAndNewestFirst(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	for i := 0; i < 1500; i++ {
		m.CheckPermission(ctx, 1, RoleOperationsManager, fmt.Sprintf("action-%d", i), "orders", nil)
	}

	logs := m.Logs(nil)
	require.Len(t, logs, MaxLogEntries)
	assert.Equal(t, "action-1499", logs[0].Action)
	assert.Equal(t, "action-500", logs[len(logs)-1].Action)
}

func TestLogsFilterByUser(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	m.CheckPermission(ctx, 7, RoleOperationsManager, "approve", "orders", nil)
	m.CheckPermission(ctx, 8, RoleFinance, "view", "financial", nil)
	m.CheckPermission(ctx, 7, RoleOperationsManager, "assign", "orders", nil)

	userID := uint64(7)
	logs := m.Logs(&userID)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, userID, entry.UserID)
	}
}

// Отказ журналируется с причиной, успех — без нее.
func TestLogEntryCarriesReasonOnDenial(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	m.CheckPermission(ctx, 1, RoleFinance, "approve", "orders", nil)
	m.CheckPermission(ctx, 1, RoleOperationsManager, "approve", "orders", nil)

	logs := m.Logs(nil)
	require.Len(t, logs, 2)
	assert.True(t, logs[1].Reason.Valid) // отказ, запись старше
	assert.False(t, logs[0].Reason.Valid)
}

func TestStats(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	m.CheckPermission(ctx, 1, RoleOperationsManager, "approve", "orders", nil)
	m.CheckPermission(ctx, 1, RoleOperationsManager, "approve", "orders", nil)
	m.CheckPermission(ctx, 2, RoleFinance, "approve", "orders", nil)

	stats := m.Stats()
	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 2, stats.SuccessfulRequests)
	assert.Equal(t, 1, stats.FailedRequests)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 0.001)
	require.NotEmpty(t, stats.TopResources)
	assert.Equal(t, "orders", stats.TopResources[0].Name)
	assert.Equal(t, 3, stats.TopResources[0].Count)
}

func TestSetRuleEnabled(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.True(t, m.SetRuleEnabled("evidencia-solo-movil", false))
	result := m.CheckPermission(ctx, 4, RoleTechnician, "upload", "evidence", &CheckContext{DeviceType: "desktop"})
	assert.True(t, result.Allowed, "выключенное правило не должно ограничивать девайс")

	assert.False(t, m.SetRuleEnabled("no-existe", true))
}

func TestCheckFunctionalityPermission(t *testing.T) {
	m := newTestManager()

	assert.True(t, m.CheckFunctionalityPermission(RoleGeneralAdministrator, "system_administration").Allowed)
	assert.True(t, m.CheckFunctionalityPermission(RoleTechnician, "field_execution").Allowed)

	denied := m.CheckFunctionalityPermission(RoleTechnician, "system_administration")
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.MissingPermissions, string(CapAll))

	// "Всё или ничего": частичного покрытия недостаточно.
	partial := m.CheckFunctionalityPermission(RoleWarehouseLead, "field_execution")
	assert.False(t, partial.Allowed)

	unknown := m.CheckFunctionalityPermission(RoleGeneralAdministrator, "no_such_feature")
	assert.False(t, unknown.Allowed)
	assert.Equal(t, ErrInternal, unknown.Code)
}

type failingStore struct{}

func (failingStore) Append(context.Context, PermissionLogEntry) error {
	return fmt.Errorf("redis недоступен")
}

// Недоступное хранилище журнала не влияет на вердикт: персистентность
// best-effort.
func TestStoreFailureDoesNotAffectVerdict(t *testing.T) {
	m := NewPermissionManager(DefaultWorkingHours, failingStore{}, zap.NewNop(),
		WithClock(func() time.Time { return workTime }))
	result := m.CheckPermission(context.Background(), 1, RoleOperationsManager, "approve", "orders", nil)
	assert.True(t, result.Allowed)
	assert.Len(t, m.Logs(nil), 1)
}
