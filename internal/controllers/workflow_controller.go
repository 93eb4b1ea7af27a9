package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-system/internal/dto"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/utils"
)

// WorkflowController — чтение графа переходов: "можно ли" и "что дальше".
// Мутации заявок живут в OrderController.
type WorkflowController struct {
	logger *zap.Logger
}

func NewWorkflowController(logger *zap.Logger) *WorkflowController {
	return &WorkflowController{logger: logger}
}

// ValidateTransition — сухая проверка перехода без мутации заявки.
func (c *WorkflowController) ValidateTransition(ctx echo.Context) error {
	var req dto.ValidateTransitionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	verdict := workflow.ValidateTransition(
		workflow.OrderStatus(req.From),
		workflow.OrderStatus(req.To),
		workflow.Role(req.Role),
		req.ApprovalGiven,
		req.ReasonGiven,
	)
	return utils.SuccessResponse(ctx, verdict, "Transición validada", http.StatusOK)
}

// ListAvailableTransitions — доступные из статуса переходы для роли
// вызывающего (строит меню "что я могу сделать дальше").
func (c *WorkflowController) ListAvailableTransitions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	role, err := utils.GetRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	from, err := workflow.ParseStatus(ctx.QueryParam("from"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), c.logger)
	}

	transitions := workflow.ListAvailableTransitions(from, role)
	return utils.SuccessResponse(ctx, transitions, "Transiciones disponibles", http.StatusOK)
}
