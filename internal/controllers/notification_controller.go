package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-system/internal/repositories"
	"rental-system/pkg/utils"
)

// NotificationController — inbox текущего пользователя (последние 100
// уведомлений, новые первыми).
type NotificationController struct {
	inboxRepo repositories.NotificationInboxRepositoryInterface
	logger    *zap.Logger
}

func NewNotificationController(
	inboxRepo repositories.NotificationInboxRepositoryInterface,
	logger *zap.Logger,
) *NotificationController {
	return &NotificationController{inboxRepo: inboxRepo, logger: logger}
}

func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	notifications, err := c.inboxRepo.GetByUser(reqCtx, userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, notifications, "Notificaciones obtenidas", http.StatusOK)
}
