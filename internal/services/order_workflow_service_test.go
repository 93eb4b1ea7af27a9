package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rental-system/internal/entities"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/eventbus"
)

type fakeOrderRepo struct {
	orders        map[uint64]*entities.Order
	nextID        uint64
	updateErr     error
	statusUpdates int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint64]*entities.Order), nextID: 1}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, creatorID uint64, number, patientName string) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.orders[id] = &entities.Order{
		ID:          id,
		Number:      number,
		Status:      workflow.StatusCreated,
		PatientName: patientName,
		CreatorID:   creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return id, nil
}

func (f *fakeOrderRepo) FindOrder(_ context.Context, id uint64) (*entities.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uint64, from, to workflow.OrderStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return apperrors.ErrNotFound
	}
	order.Status = to
	f.statusUpdates++
	return nil
}

func (f *fakeOrderRepo) GetOrders(_ context.Context, _, _ uint64) ([]entities.Order, uint64, error) {
	out := make([]entities.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, uint64(len(out)), nil
}

func newWorkflowService(repo *fakeOrderRepo) OrderWorkflowServiceInterface {
	workTime := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	manager := workflow.NewPermissionManager(workflow.DefaultWorkingHours, nil, zap.NewNop(),
		workflow.WithClock(func() time.Time { return workTime }))
	return NewOrderWorkflowService(repo, manager, eventbus.New(zap.NewNop()), zap.NewNop())
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)

	order, err := svc.CreateOrder(context.Background(), 5, workflow.RoleCommercialManager, "ORD-001", "Juan Pérez")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCreated, order.Status)
	assert.Equal(t, "ORD-001", order.Number)
}

func TestCreateOrderDeniedForRoleWithoutCapability(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)

	_, err := svc.CreateOrder(context.Background(), 5, workflow.RoleTechnician, "ORD-002", "Juan Pérez")
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Empty(t, repo.orders)
}

func TestChangeStatusHappyPath(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)
	id, _ := repo.CreateOrder(context.Background(), 5, "ORD-003", "Ana Ruiz")

	verdict, err := svc.ChangeStatus(context.Background(), ChangeStatusParams{
		OrderID:       id,
		To:            workflow.StatusApproved,
		UserID:        2,
		Role:          workflow.RoleOperationsManager,
		ApprovalGiven: true,
	})
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Equal(t, workflow.StatusApproved, repo.orders[id].Status)
}

// Невалидный переход — ожидаемый результат, а не ошибка: вердикт уходит
// вызывающему, заявка не трогается.
func TestChangeStatusInvalidVerdictDoesNotMutate(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)
	id, _ := repo.CreateOrder(context.Background(), 5, "ORD-004", "Ana Ruiz")

	verdict, err := svc.ChangeStatus(context.Background(), ChangeStatusParams{
		OrderID:       id,
		To:            workflow.StatusRejected,
		UserID:        2,
		Role:          workflow.RoleOperationsManager,
		ApprovalGiven: true,
		// причина не указана
	})
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, workflow.StatusCreated, repo.orders[id].Status)
	assert.Zero(t, repo.statusUpdates)
}

func TestChangeStatusPermissionDenied(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)
	id, _ := repo.CreateOrder(context.Background(), 5, "ORD-005", "Ana Ruiz")

	// Finanzas не входит в правило "rechazo-operativo".
	_, err := svc.ChangeStatus(context.Background(), ChangeStatusParams{
		OrderID:       id,
		To:            workflow.StatusRejected,
		UserID:        8,
		Role:          workflow.RoleFinance,
		ApprovalGiven: true,
		Reason:        "duplicada",
	})
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, workflow.StatusCreated, repo.orders[id].Status)
}

func TestChangeStatusOrderNotFound(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)

	_, err := svc.ChangeStatus(context.Background(), ChangeStatusParams{
		OrderID: 999,
		To:      workflow.StatusApproved,
		UserID:  2,
		Role:    workflow.RoleOperationsManager,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTransitionAction(t *testing.T) {
	assert.Equal(t, "approve", transitionAction(workflow.StatusApproved))
	assert.Equal(t, "close", transitionAction(workflow.StatusCompleted))
	assert.Equal(t, "reject", transitionAction(workflow.StatusDoctorRejected))
	assert.Equal(t, "assign", transitionAction(workflow.StatusAssigned))
	assert.Equal(t, "update", transitionAction(workflow.StatusInTransit))
}

// Финансы закрывают заявку: роль из ребра returned -> completed должна
// проходить и контекстную проверку, а не только валидатор перехода.
func TestChangeStatusReturnedToCompletedAsFinance(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newWorkflowService(repo)
	id, _ := repo.CreateOrder(context.Background(), 5, "ORD-006", "Ana Ruiz")
	repo.orders[id].Status = workflow.StatusReturned

	verdict, err := svc.ChangeStatus(context.Background(), ChangeStatusParams{
		OrderID:       id,
		To:            workflow.StatusCompleted,
		UserID:        8,
		Role:          workflow.RoleFinance,
		ApprovalGiven: true,
	})
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Equal(t, workflow.StatusCompleted, repo.orders[id].Status)
}

// Каждая роль, которой каталог разрешает переход, должна проходить и
// контекстную проверку соответствующего действия: правила не могут
// противоречить каталогу.
func TestRulesAgreeWithTransitionCatalog(t *testing.T) {
	workTime := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	manager := workflow.NewPermissionManager(workflow.DefaultWorkingHours, nil, zap.NewNop(),
		workflow.WithClock(func() time.Time { return workTime }))

	for _, edge := range workflow.Transitions() {
		from := edge.From
		for _, role := range edge.AllowedRoles.List() {
			result := manager.CheckPermission(context.Background(), 1, role, transitionAction(edge.To), "orders", &workflow.CheckContext{
				OrderStatus: &from,
			})
			assert.True(t, result.Allowed,
				"роль %s не проходит проверку %s для перехода %s -> %s: %s",
				role, transitionAction(edge.To), edge.From, edge.To, result.Reason)
		}
	}
}
