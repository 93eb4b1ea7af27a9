package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-system/internal/controllers"
	"rental-system/internal/listeners"
	"rental-system/internal/repositories"
	"rental-system/internal/services"
	"rental-system/internal/workflow"
	"rental-system/pkg/config"
	"rental-system/pkg/eventbus"
	"rental-system/pkg/middleware"
	"rental-system/pkg/service"
	appwebsocket "rental-system/pkg/websocket"
)

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	hub *appwebsocket.Hub,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: создание маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- репозитории ---
	orderRepo := repositories.NewOrderRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	auditRepo := repositories.NewRedisAuditLogRepository(redisClient)
	inboxRepo := repositories.NewRedisNotificationInboxRepository(redisClient)

	// --- ядро и сервисы ---
	manager := workflow.NewPermissionManager(
		workflow.WorkingHours{From: cfg.Workflow.WorkingHoursFrom, To: cfg.Workflow.WorkingHoursTo},
		auditRepo,
		logger,
	)
	bus := eventbus.New(logger)

	channels := []services.Channel{
		services.NewInAppChannel(hub, inboxRepo),
		services.NewLogChannel("email", logger),
		services.NewLogChannel("sms", logger),
		services.NewLogChannel("push", logger),
	}
	notificationService := services.NewNotificationService(userRepo, channels, logger)
	listeners.NewNotificationListener(notificationService, logger).Register(bus)

	workflowService := services.NewOrderWorkflowService(orderRepo, manager, bus, logger)

	// --- контроллеры ---
	workflowController := controllers.NewWorkflowController(logger)
	permissionController := controllers.NewPermissionController(manager, logger)
	orderController := controllers.NewOrderController(workflowService, logger)
	notificationController := controllers.NewNotificationController(inboxRepo, logger)
	reportController := controllers.NewReportController(auditRepo, logger)
	wsController := controllers.NewWebSocketController(hub, jwtSvc, logger)

	// --- маршруты ---
	secure := api.Group("", authMW.Auth)

	secure.POST("/transitions/validate", workflowController.ValidateTransition)
	secure.GET("/transitions/available", workflowController.ListAvailableTransitions)

	secure.POST("/permissions/check", permissionController.CheckPermission)
	secure.POST("/permissions/functionality", permissionController.CheckFunctionality)
	secure.GET("/permissions/logs", permissionController.GetLogs)
	secure.GET("/permissions/stats", permissionController.GetStats)
	secure.GET("/permissions/visibility/:role", permissionController.GetVisibility)
	secure.GET("/permissions/edit-matrix/:status", permissionController.GetEditMatrix)

	secure.POST("/orders", orderController.CreateOrder)
	secure.GET("/orders", orderController.GetOrders)
	secure.GET("/orders/:id", orderController.FindOrder)
	secure.PUT("/orders/:id/status", orderController.ChangeStatus)

	secure.GET("/notifications", notificationController.GetMyNotifications)
	secure.GET("/reports/permission-log", reportController.GetPermissionLogReport)

	// WebSocket авторизуется токеном из query, мимо authMW.
	e.GET("/ws", wsController.ServeWs)

	logger.Info("InitRouter: создание маршрутов завершено")
}
