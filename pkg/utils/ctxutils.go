package utils

import (
	"context"

	"rental-system/internal/workflow"
	"rental-system/pkg/contextkeys"
	apperrors "rental-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetRoleFromCtx(ctx context.Context) (workflow.Role, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(workflow.Role)
	if !ok {
		return "", apperrors.ErrRoleNotFoundInContext
	}
	return role, nil
}

// GetDeviceFromCtx — объявленный клиентом класс устройства; пустая строка,
// если заголовок не передан.
func GetDeviceFromCtx(ctx context.Context) string {
	device, _ := ctx.Value(contextkeys.DeviceKey).(string)
	return device
}
