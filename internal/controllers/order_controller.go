package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-system/internal/dto"
	"rental-system/internal/services"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/utils"
)

type OrderController struct {
	workflowService services.OrderWorkflowServiceInterface
	logger          *zap.Logger
}

func NewOrderController(
	workflowService services.OrderWorkflowServiceInterface,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		workflowService: workflowService,
		logger:          logger,
	}
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.CreateOrderDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.workflowService.CreateOrder(reqCtx, userID, role, req.Number, req.PatientName)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Orden creada", http.StatusCreated)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	limit := uint64(50)
	offset := uint64(0)
	if raw := ctx.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if raw := ctx.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			offset = parsed
		}
	}

	orders, total, err := c.workflowService.GetOrders(reqCtx, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"list": orders, "total": total}
	return utils.SuccessResponse(ctx, body, "Órdenes obtenidas", http.StatusOK)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}

	order, err := c.workflowService.GetOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Orden encontrada", http.StatusOK)
}

// ChangeStatus — применение перехода к заявке. При невалидном переходе
// отдаем вердикт с 422: для UI отказ — это данные, а не исключение.
func (c *OrderController) ChangeStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}

	var req dto.ChangeOrderStatusDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	verdict, err := c.workflowService.ChangeStatus(reqCtx, services.ChangeStatusParams{
		OrderID:       orderID,
		To:            workflow.OrderStatus(req.To),
		UserID:        userID,
		Role:          role,
		ApprovalGiven: req.ApprovalGiven,
		Reason:        req.Reason,
		DeviceType:    utils.GetDeviceFromCtx(reqCtx),
		IP:            ctx.RealIP(),
	})
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !verdict.Valid {
		return utils.SuccessResponse(ctx, verdict, "Transición no permitida", http.StatusUnprocessableEntity)
	}
	return utils.SuccessResponse(ctx, verdict, "Estado actualizado", http.StatusOK)
}
