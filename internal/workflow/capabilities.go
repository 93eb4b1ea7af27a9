package workflow

// Capability — атомарное право вида "ресурс:действие".
type Capability string

const (
	// Суперправо. Есть только у Administrador General.
	CapAll Capability = "all"

	CapOrdersCreate  Capability = "orders:create"
	CapOrdersView    Capability = "orders:view"
	CapOrdersEdit    Capability = "orders:edit"
	CapOrdersApprove Capability = "orders:approve"
	CapOrdersReject  Capability = "orders:reject"
	CapOrdersAssign  Capability = "orders:assign"
	CapOrdersClose   Capability = "orders:close"

	CapObjectsConfirm   Capability = "objects:confirm"
	CapWarehousePrepare Capability = "warehouse:prepare"

	CapTransportExecute Capability = "transport:execute"
	CapEvidenceUpload   Capability = "evidence:upload"

	CapFinanceView Capability = "finance:view"
)

// roleCapabilities — единственный источник правды "роль -> права".
// Статусные ограничения ниже работают как дополнительный фильтр поверх
// этой таблицы, а не как вторая таблица выдачи прав.
var roleCapabilities = map[Role][]Capability{
	RoleCommercialManager: {
		CapOrdersCreate, CapOrdersView, CapOrdersEdit,
	},
	RoleOperationsManager: {
		CapOrdersView, CapOrdersEdit, CapOrdersApprove, CapOrdersReject, CapOrdersAssign,
	},
	RoleWarehouseLead: {
		CapOrdersView, CapObjectsConfirm, CapWarehousePrepare,
	},
	RoleTechnician: {
		CapOrdersView, CapTransportExecute, CapEvidenceUpload,
	},
	RoleAdministrativeManager: {
		CapOrdersView, CapOrdersApprove, CapOrdersClose,
	},
	RoleFinance: {
		CapOrdersView, CapFinanceView, CapOrdersClose,
	},
	RoleGeneralAdministrator: {
		CapAll,
	},
}

// statusRequiredCapabilities — какие права нужны, чтобы совершать действия
// над заявкой в данном статусе. Достаточно пересечения хотя бы по одному праву.
// Финальные статусы закрыты для всех, кроме суперправа.
var statusRequiredCapabilities = map[OrderStatus][]Capability{
	StatusCreated:             {CapOrdersEdit, CapOrdersApprove, CapOrdersReject},
	StatusPendingObjects:      {CapOrdersEdit, CapOrdersApprove},
	StatusApproved:            {CapOrdersEdit},
	StatusRejected:            {CapAll},
	StatusDoctorApproved:      {CapObjectsConfirm},
	StatusDoctorRejected:      {CapAll},
	StatusObjectsConfirmed:    {CapWarehousePrepare},
	StatusInPreparation:       {CapWarehousePrepare},
	StatusReadyForTechnicians: {CapOrdersAssign},
	StatusAssigned:            {CapTransportExecute},
	StatusInTransit:           {CapTransportExecute, CapEvidenceUpload},
	StatusInProgress:          {CapTransportExecute, CapEvidenceUpload, CapWarehousePrepare},
	StatusReturned:            {CapOrdersClose},
	StatusCompleted:           {CapAll},
}

// functionalityRequirements — права, необходимые для именованной
// функциональности целиком (проверка "всё или ничего").
var functionalityRequirements = map[string][]Capability{
	"order_creation":        {CapOrdersCreate},
	"order_approval":        {CapOrdersApprove},
	"order_assignment":      {CapOrdersAssign},
	"warehouse_preparation": {CapObjectsConfirm, CapWarehousePrepare},
	"field_execution":       {CapTransportExecute, CapEvidenceUpload},
	"order_closing":         {CapOrdersClose},
	"financial_reports":     {CapFinanceView},
	"system_administration": {CapAll},
}

// RoleCapabilities возвращает выданные роли права (копию).
func RoleCapabilities(role Role) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// HasCapability — есть ли у роли право (суперправо покрывает всё).
func HasCapability(role Role, cap Capability) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == CapAll || granted == cap {
			return true
		}
	}
	return false
}

// MissingForStatus возвращает список прав, которых роли не хватает для
// работы с заявкой в данном статусе. Пустой список = доступ есть.
func MissingForStatus(role Role, status OrderStatus) []Capability {
	required := statusRequiredCapabilities[status]
	for _, cap := range required {
		if HasCapability(role, cap) {
			return nil
		}
	}
	missing := make([]Capability, len(required))
	copy(missing, required)
	return missing
}
