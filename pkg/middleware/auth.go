package middleware

import (
	"context"
	"strings"

	"rental-system/internal/workflow"
	"rental-system/pkg/contextkeys"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/service"
	"rental-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth извлекает уже аутентифицированного пользователя (id + роль) из
// Bearer-токена и кладет его в контекст запроса. Сессии и выпуск токенов —
// зона ответственности внешнего сервиса аутентификации.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}

		role, err := workflow.ParseRole(claims.Role)
		if err != nil {
			m.logger.Warn("AuthMiddleware: токен с неизвестной ролью", zap.String("role", claims.Role))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
		// Класс устройства объявляет клиент; для девайсных правил этого
		// достаточно, подделка ловится на уровне аудита.
		if device := c.Request().Header.Get("X-Device-Type"); device != "" {
			ctx = context.WithValue(ctx, contextkeys.DeviceKey, device)
		}
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
