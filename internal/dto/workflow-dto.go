package dto

// ValidateTransitionDTO — запрос на проверку перехода.
type ValidateTransitionDTO struct {
	From          string `json:"from" validate:"required,order_status"`
	To            string `json:"to" validate:"required,order_status"`
	Role          string `json:"role" validate:"required,workflow_role"`
	ApprovalGiven bool   `json:"approvalGiven"`
	ReasonGiven   bool   `json:"reasonGiven"`
}

// CheckPermissionDTO — запрос контекстной проверки прав. Пользователь и роль
// берутся из токена, сюда кладется только контекст действия.
type CheckPermissionDTO struct {
	Action      string `json:"action" validate:"required"`
	Resource    string `json:"resource" validate:"required"`
	OrderStatus string `json:"orderStatus,omitempty" validate:"omitempty,order_status"`
	DeviceType  string `json:"deviceType,omitempty" validate:"device_type"`
}

// CheckFunctionalityDTO — проверка доступа к именованной функциональности.
type CheckFunctionalityDTO struct {
	Functionality string `json:"functionality" validate:"required"`
}

// ChangeOrderStatusDTO — запрос смены статуса заявки.
type ChangeOrderStatusDTO struct {
	To            string `json:"to" validate:"required,order_status"`
	ApprovalGiven bool   `json:"approvalGiven"`
	Reason        string `json:"reason,omitempty"`
}

// CreateOrderDTO — создание заявки (всегда в статусе created).
type CreateOrderDTO struct {
	Number      string `json:"number" validate:"required"`
	PatientName string `json:"patientName" validate:"required"`
}
