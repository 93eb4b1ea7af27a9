package events

import "rental-system/internal/workflow"

// OrderStatusChangedEventName — имя события для подписки на шине.
const OrderStatusChangedEventName = "order.status.changed"

// OrderStatusChangedEvent публикуется после успешного перехода. Ядро не
// ждет доставки уведомлений: событие — это fire-and-forget.
type OrderStatusChangedEvent struct {
	OrderID         uint64
	OrderNumber     string
	FromStatus      workflow.OrderStatus
	ToStatus        workflow.OrderStatus
	TriggeredBy     uint64
	TriggeredByRole workflow.Role
	Reason          string
}

func (e OrderStatusChangedEvent) Name() string { return OrderStatusChangedEventName }
