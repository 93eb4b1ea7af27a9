package workflow

import "fmt"

// OrderStatus — код статуса заявки на аренду (совпадает с кодами на фронтенде).
type OrderStatus string

const (
	StatusCreated             OrderStatus = "created"
	StatusPendingObjects      OrderStatus = "pending_objects"
	StatusApproved            OrderStatus = "approved"
	StatusRejected            OrderStatus = "rejected"
	StatusDoctorApproved      OrderStatus = "doctor_approved"
	StatusDoctorRejected      OrderStatus = "doctor_rejected"
	StatusObjectsConfirmed    OrderStatus = "objects_confirmed"
	StatusInPreparation       OrderStatus = "in_preparation"
	StatusReadyForTechnicians OrderStatus = "ready_for_technicians"
	StatusAssigned            OrderStatus = "assigned"
	StatusInTransit           OrderStatus = "in_transit"
	StatusInProgress          OrderStatus = "in_progress"
	StatusReturned            OrderStatus = "returned"
	StatusCompleted           OrderStatus = "completed"
)

// AllStatuses — полный список в порядке жизненного цикла.
var AllStatuses = []OrderStatus{
	StatusCreated,
	StatusPendingObjects,
	StatusApproved,
	StatusRejected,
	StatusDoctorApproved,
	StatusDoctorRejected,
	StatusObjectsConfirmed,
	StatusInPreparation,
	StatusReadyForTechnicians,
	StatusAssigned,
	StatusInTransit,
	StatusInProgress,
	StatusReturned,
	StatusCompleted,
}

// Финальные статусы: из них нет ни одного перехода.
var terminalStatuses = map[OrderStatus]bool{
	StatusRejected:       true,
	StatusDoctorRejected: true,
	StatusCompleted:      true,
}

func (s OrderStatus) String() string { return string(s) }

// IsTerminal сообщает, является ли статус финальным.
func (s OrderStatus) IsTerminal() bool { return terminalStatuses[s] }

// IsValid — известен ли код статуса.
func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus валидирует строку из внешнего запроса.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("неизвестный статус заявки: %q", raw)
	}
	return s, nil
}
