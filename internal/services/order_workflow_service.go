package services

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rental-system/internal/entities"
	"rental-system/internal/events"
	"rental-system/internal/repositories"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/eventbus"
)

type OrderWorkflowServiceInterface interface {
	CreateOrder(ctx context.Context, creatorID uint64, role workflow.Role, number, patientName string) (*entities.Order, error)
	ChangeStatus(ctx context.Context, params ChangeStatusParams) (workflow.Verdict, error)
	GetOrder(ctx context.Context, id uint64) (*entities.Order, error)
	GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error)
}

// ChangeStatusParams — всё, что нужно для смены статуса заявки.
type ChangeStatusParams struct {
	OrderID       uint64
	To            workflow.OrderStatus
	UserID        uint64
	Role          workflow.Role
	ApprovalGiven bool
	Reason        string
	DeviceType    string
	IP            string
}

// OrderWorkflowService выполняет мутацию заявки после вердикта движка:
// контекстная проверка прав -> валидация перехода -> запись в БД ->
// публикация события для рассылки. Само ядро (workflow) остается чистым.
type OrderWorkflowService struct {
	orderRepo repositories.OrderRepositoryInterface
	manager   *workflow.PermissionManager
	bus       *eventbus.Bus
	logger    *zap.Logger
}

func NewOrderWorkflowService(
	orderRepo repositories.OrderRepositoryInterface,
	manager *workflow.PermissionManager,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OrderWorkflowServiceInterface {
	return &OrderWorkflowService{
		orderRepo: orderRepo,
		manager:   manager,
		bus:       bus,
		logger:    logger,
	}
}

func (s *OrderWorkflowService) CreateOrder(ctx context.Context, creatorID uint64, role workflow.Role, number, patientName string) (*entities.Order, error) {
	check := s.manager.CheckPermission(ctx, creatorID, role, "create", "orders", nil)
	if !check.Allowed {
		return nil, apperrors.NewHttpError(http.StatusForbidden, check.Reason, nil, check)
	}
	if !workflow.HasCapability(role, workflow.CapOrdersCreate) {
		return nil, apperrors.NewHttpError(http.StatusForbidden, "El rol "+string(role)+" no puede crear órdenes", nil, nil)
	}

	id, err := s.orderRepo.CreateOrder(ctx, creatorID, number, patientName)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindOrder(ctx, id)
}

// transitionAction сводит переход к действию для правил (resource=orders).
// Закрытие заявки — отдельное действие: его выполняют финансовые роли,
// которых нет в операционном approve.
func transitionAction(to workflow.OrderStatus) string {
	switch to {
	case workflow.StatusApproved, workflow.StatusDoctorApproved:
		return "approve"
	case workflow.StatusRejected, workflow.StatusDoctorRejected:
		return "reject"
	case workflow.StatusAssigned:
		return "assign"
	case workflow.StatusCompleted:
		return "close"
	default:
		return "update"
	}
}

// ChangeStatus применяет переход. Возвращенный вердикт отдаётся клиенту и
// при отказе: в нем есть разрешенные роли и чего не хватило.
func (s *OrderWorkflowService) ChangeStatus(ctx context.Context, params ChangeStatusParams) (workflow.Verdict, error) {
	order, err := s.orderRepo.FindOrder(ctx, params.OrderID)
	if err != nil {
		return workflow.Verdict{}, err
	}

	currentStatus := order.Status
	check := s.manager.CheckPermission(ctx, params.UserID, params.Role, transitionAction(params.To), "orders", &workflow.CheckContext{
		OrderStatus: &currentStatus,
		DeviceType:  params.DeviceType,
		IP:          params.IP,
	})
	if !check.Allowed {
		return workflow.Verdict{}, apperrors.NewHttpError(http.StatusForbidden, check.Reason, nil, check)
	}

	reasonGiven := strings.TrimSpace(params.Reason) != ""
	verdict := workflow.ValidateTransition(order.Status, params.To, params.Role, params.ApprovalGiven, reasonGiven)
	if !verdict.Valid {
		// Отказ — ожидаемый результат, не ошибка движка. Вердикт уходит
		// клиенту целиком, чтобы UI объяснил, чего не хватило.
		return verdict, nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, params.To); err != nil {
		return verdict, err
	}

	s.logger.Info("статус заявки изменен",
		zap.Uint64("orderID", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(params.To)),
		zap.String("role", string(params.Role)),
	)

	// Fire-and-forget: доставка уведомлений не влияет на успех перехода.
	s.bus.Publish(ctx, events.OrderStatusChangedEvent{
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		FromStatus:      order.Status,
		ToStatus:        params.To,
		TriggeredBy:     params.UserID,
		TriggeredByRole: params.Role,
		Reason:          params.Reason,
	})

	return verdict, nil
}

func (s *OrderWorkflowService) GetOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	return s.orderRepo.FindOrder(ctx, id)
}

func (s *OrderWorkflowService) GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error) {
	return s.orderRepo.GetOrders(ctx, limit, offset)
}
