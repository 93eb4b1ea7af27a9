package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rental-system/internal/events"
	"rental-system/internal/repositories"
	"rental-system/internal/workflow"
)

// statusNotifyRoles — кого информировать при входе заявки в статус.
// Статическая таблица: меняется только редеплоем.
var statusNotifyRoles = map[workflow.OrderStatus][]workflow.Role{
	workflow.StatusApproved:            {workflow.RoleCommercialManager, workflow.RoleWarehouseLead},
	workflow.StatusRejected:            {workflow.RoleCommercialManager},
	workflow.StatusPendingObjects:      {workflow.RoleOperationsManager, workflow.RoleAdministrativeManager},
	workflow.StatusDoctorApproved:      {workflow.RoleWarehouseLead, workflow.RoleCommercialManager},
	workflow.StatusDoctorRejected:      {workflow.RoleCommercialManager},
	workflow.StatusObjectsConfirmed:    {workflow.RoleOperationsManager},
	workflow.StatusInPreparation:       {workflow.RoleWarehouseLead, workflow.RoleGeneralAdministrator},
	workflow.StatusReadyForTechnicians: {workflow.RoleOperationsManager},
	workflow.StatusAssigned:            {workflow.RoleTechnician},
	workflow.StatusInTransit:           {workflow.RoleOperationsManager},
	workflow.StatusInProgress:          {workflow.RoleCommercialManager, workflow.RoleOperationsManager},
	workflow.StatusReturned:            {workflow.RoleAdministrativeManager, workflow.RoleFinance},
	workflow.StatusCompleted:           {workflow.RoleCommercialManager, workflow.RoleFinance, workflow.RoleGeneralAdministrator},
}

// transitionTemplates — шаблоны сообщений по типу перехода. Плейсхолдеры
// подставляются буквально; неизвестный плейсхолдер остается как есть.
var transitionTemplates = map[string]string{
	"created->approved":                       "La orden {orderNumber} fue aprobada el {date}. Siguiente paso: confirmar equipos.",
	"created->rejected":                       "La orden {orderNumber} fue rechazada el {date}. Motivo: {reason}",
	"approved->pending_objects":               "La orden {orderNumber} espera la validación del médico desde el {date}.",
	"pending_objects->doctor_approved":        "El médico aprobó los equipos de la orden {orderNumber} el {date}.",
	"pending_objects->doctor_rejected":        "El médico rechazó los equipos de la orden {orderNumber}. Motivo: {reason}",
	"doctor_approved->objects_confirmed":      "Almacén confirmó existencias para la orden {orderNumber} el {date}.",
	"objects_confirmed->in_preparation":       "La orden {orderNumber} entró en preparación el {date}.",
	"in_preparation->ready_for_technicians":   "La orden {orderNumber} está lista para asignar técnicos.",
	"ready_for_technicians->assigned":         "La orden {orderNumber} fue asignada a técnicos el {date}.",
	"assigned->in_transit":                    "Los equipos de la orden {orderNumber} están en tránsito.",
	"in_transit->in_progress":                 "La renta de la orden {orderNumber} está activa desde el {date}.",
	"in_progress->returned":                   "Los equipos de la orden {orderNumber} fueron devueltos el {date}.",
	"returned->completed":                     "La orden {orderNumber} fue completada y facturada el {date}.",
}

const defaultTemplate = "La orden {orderNumber} cambió de {fromStatus} a {toStatus} el {date}."

// roleChannels — включенность каналов доставки по ролям. Техники в поле
// получают push, офисные роли — почту; внутрисистемный канал у всех.
var roleChannels = map[workflow.Role]map[string]bool{
	workflow.RoleCommercialManager:     {"inapp": true, "email": true},
	workflow.RoleOperationsManager:     {"inapp": true, "email": true, "sms": true},
	workflow.RoleWarehouseLead:         {"inapp": true, "email": true},
	workflow.RoleTechnician:            {"inapp": true, "push": true, "sms": true},
	workflow.RoleAdministrativeManager: {"inapp": true, "email": true},
	workflow.RoleFinance:               {"inapp": true, "email": true},
	workflow.RoleGeneralAdministrator:  {"inapp": true, "email": true, "push": true},
}

// Recipient — адресат доставленного сообщения.
type Recipient struct {
	UserID uint64
	Role   workflow.Role
}

// RenderedMessage — готовое к доставке сообщение.
type RenderedMessage struct {
	ID          string
	OrderID     uint64
	OrderNumber string
	FromStatus  workflow.OrderStatus
	ToStatus    workflow.OrderStatus
	Text        string
	CreatedAt   time.Time
}

// Channel — один канал доставки. Реальная отправка (SMTP, SMS-шлюз) живет
// за этим интерфейсом; отказ одного канала не должен блокировать остальные.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient Recipient, message RenderedMessage) error
}

type NotificationServiceInterface interface {
	DispatchStatusChange(ctx context.Context, event events.OrderStatusChangedEvent) error
}

// NotificationService — диспетчер уведомлений: резолвит роли-адресаты,
// рендерит шаблон и раздает сообщение по включенным каналам best-effort.
type NotificationService struct {
	userRepo repositories.UserRepositoryInterface
	channels []Channel
	logger   *zap.Logger
	clock    func() time.Time
}

func NewNotificationService(
	userRepo repositories.UserRepositoryInterface,
	channels []Channel,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		userRepo: userRepo,
		channels: channels,
		logger:   logger,
		clock:    time.Now,
	}
}

// RenderTemplate подставляет именованные плейсхолдеры буквально. Плейсхолдер
// без значения остается в тексте как есть — его не затирают пустотой.
func RenderTemplate(template string, values map[string]string) string {
	rendered := template
	for name, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", value)
	}
	return rendered
}

// templateFor возвращает шаблон для типа перехода.
func templateFor(from, to workflow.OrderStatus) string {
	if tpl, ok := transitionTemplates[string(from)+"->"+string(to)]; ok {
		return tpl
	}
	return defaultTemplate
}

// NotifyRolesFor — статический список ролей для информирования о статусе.
func NotifyRolesFor(status workflow.OrderStatus) []workflow.Role {
	return statusNotifyRoles[status]
}

// DispatchStatusChange раздает уведомления о совершённом переходе.
// Переход уже состоялся: любые ошибки доставки здесь только логируются.
func (s *NotificationService) DispatchStatusChange(ctx context.Context, event events.OrderStatusChangedEvent) error {
	message := RenderedMessage{
		ID:          uuid.New().String(),
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		FromStatus:  event.FromStatus,
		ToStatus:    event.ToStatus,
		CreatedAt:   s.clock(),
	}

	values := map[string]string{
		"orderNumber": event.OrderNumber,
		"date":        message.CreatedAt.Format("02.01.2006 15:04"),
		"fromStatus":  string(event.FromStatus),
		"toStatus":    string(event.ToStatus),
		"actorRole":   string(event.TriggeredByRole),
	}
	if event.Reason != "" {
		values["reason"] = event.Reason
	}

	for _, role := range NotifyRolesFor(event.ToStatus) {
		text := RenderTemplate(templateFor(event.FromStatus, event.ToStatus), values)
		roleMessage := message
		roleMessage.Text = text

		userIDs, err := s.userRepo.FindIDsByRole(ctx, role)
		if err != nil {
			s.logger.Error("не удалось найти получателей по роли",
				zap.String("role", string(role)),
				zap.Error(err),
			)
			continue
		}

		enabled := roleChannels[role]
		for _, channel := range s.channels {
			if !enabled[channel.Name()] {
				continue
			}
			for _, userID := range userIDs {
				recipient := Recipient{UserID: userID, Role: role}
				if err := channel.Send(ctx, recipient, roleMessage); err != nil {
					// Best-effort: один канал не блокирует остальные.
					s.logger.Warn("канал доставки вернул ошибку",
						zap.String("channel", channel.Name()),
						zap.Uint64("userID", userID),
						zap.Error(err),
					)
				}
			}
		}
	}
	return nil
}
