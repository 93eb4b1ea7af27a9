package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-system/internal/dto"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/utils"
)

type PermissionController struct {
	manager *workflow.PermissionManager
	logger  *zap.Logger
}

func NewPermissionController(manager *workflow.PermissionManager, logger *zap.Logger) *PermissionController {
	return &PermissionController{manager: manager, logger: logger}
}

// CheckPermission — контекстная проверка "могу ли я". Пользователь и роль —
// из токена, контекст действия — из тела запроса.
func (c *PermissionController) CheckPermission(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.CheckPermissionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	checkCtx := &workflow.CheckContext{
		IP: ctx.RealIP(),
	}
	if req.OrderStatus != "" {
		status := workflow.OrderStatus(req.OrderStatus)
		checkCtx.OrderStatus = &status
	}
	if req.DeviceType != "" {
		checkCtx.DeviceType = req.DeviceType
	} else {
		checkCtx.DeviceType = utils.GetDeviceFromCtx(reqCtx)
	}

	result := c.manager.CheckPermission(reqCtx, userID, role, req.Action, req.Resource, checkCtx)
	return utils.SuccessResponse(ctx, result, "Verificación realizada", http.StatusOK)
}

// CheckFunctionality — проверка "всё или ничего" для именованной функциональности.
func (c *PermissionController) CheckFunctionality(ctx echo.Context) error {
	role, err := utils.GetRoleFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.CheckFunctionalityDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result := c.manager.CheckFunctionalityPermission(role, req.Functionality)
	return utils.SuccessResponse(ctx, result, "Verificación realizada", http.StatusOK)
}

// GetLogs — журнал проверок, новые записи первыми. ?userId= фильтрует по
// пользователю. Доступно только админской роли.
func (c *PermissionController) GetLogs(ctx echo.Context) error {
	role, err := utils.GetRoleFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !workflow.HasCapability(role, workflow.CapAll) {
		return utils.ErrorResponse(ctx, apperrors.ErrForbidden, c.logger)
	}

	var userID *uint64
	if raw := ctx.QueryParam("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
		}
		userID = &parsed
	}

	logs := c.manager.Logs(userID)
	return utils.SuccessResponse(ctx, logs, "Registro de accesos", http.StatusOK)
}

// GetStats — агрегаты по журналу проверок.
func (c *PermissionController) GetStats(ctx echo.Context) error {
	role, err := utils.GetRoleFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !workflow.HasCapability(role, workflow.CapAll) {
		return utils.ErrorResponse(ctx, apperrors.ErrForbidden, c.logger)
	}

	return utils.SuccessResponse(ctx, c.manager.Stats(), "Estadísticas de acceso", http.StatusOK)
}

// GetVisibility — флаги видимости для роли (read-гейтинг UI).
func (c *PermissionController) GetVisibility(ctx echo.Context) error {
	role, err := workflow.ParseRole(ctx.Param("role"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), c.logger)
	}
	return utils.SuccessResponse(ctx, workflow.Visibility(role), "Matriz de visibilidad", http.StatusOK)
}

// GetEditMatrix — наборы ролей canEdit/canDelete/... для статуса.
func (c *PermissionController) GetEditMatrix(ctx echo.Context) error {
	status, err := workflow.ParseStatus(ctx.Param("status"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), c.logger)
	}

	sets := workflow.EditPermissions(status)
	// RoleSet в JSON отдаем списками, а не map-ами.
	body := map[string][]workflow.Role{
		"canEdit":    sets.CanEdit.List(),
		"canDelete":  sets.CanDelete.List(),
		"canApprove": sets.CanApprove.List(),
		"canReject":  sets.CanReject.List(),
		"canAssign":  sets.CanAssign.List(),
	}
	return utils.SuccessResponse(ctx, body, "Matriz de edición", http.StatusOK)
}
