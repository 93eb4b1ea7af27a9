package workflow

// Коды ошибок валидации перехода. Это не Go-ошибки: движок никогда не
// "бросает" отказ наружу, он возвращает структурированный вердикт.
const (
	ErrNoSuchTransition = "NO_SUCH_TRANSITION"
	ErrRoleNotAllowed   = "ROLE_NOT_ALLOWED"
	ErrApprovalRequired = "APPROVAL_REQUIRED"
	ErrReasonRequired   = "REASON_REQUIRED"
)

// TransitionEdge — одно разрешенное ребро графа статусов со всеми guard-ами.
// Граф — это данные, а не код: новые переходы добавляются записью в каталог.
type TransitionEdge struct {
	From             OrderStatus `json:"from"`
	To               OrderStatus `json:"to"`
	AllowedRoles     RoleSet     `json:"-"`
	RequiresApproval bool        `json:"requiresApproval"`
	RequiresReason   bool        `json:"requiresReason"`
	Conditions       []string    `json:"conditions"`
	NotifyRoles      []Role      `json:"notifyRoles"`
	NextSteps        []string    `json:"nextSteps"`
}

// TransitionError — одна причина невалидности с человекочитаемым текстом.
type TransitionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Verdict — результат проверки перехода. AllowedRoles/Conditions/NextSteps
// заполняются и для невалидного перехода, чтобы UI мог объяснить,
// чего не хватило.
type Verdict struct {
	Valid            bool              `json:"valid"`
	AllowedRoles     []Role            `json:"allowedRoles"`
	RequiresApproval bool              `json:"requiresApproval"`
	RequiresReason   bool              `json:"requiresReason"`
	Conditions       []string          `json:"conditions"`
	NextSteps        []string          `json:"nextSteps"`
	Errors           []TransitionError `json:"errors"`
	Warnings         []string          `json:"warnings"`
}

// transitionCatalog — все разрешенные переходы жизненного цикла заявки.
// Инвариант: не больше одного ребра на пару (from, to), из финальных
// статусов ребер нет.
var transitionCatalog = []TransitionEdge{
	{
		From:             StatusCreated,
		To:               StatusApproved,
		AllowedRoles:     NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
		RequiresApproval: true,
		Conditions:       []string{"La orden tiene paciente y período de renta definidos"},
		NotifyRoles:      []Role{RoleCommercialManager, RoleWarehouseLead},
		NextSteps:        []string{"Registrar los equipos solicitados por el médico"},
	},
	{
		From:             StatusCreated,
		To:               StatusRejected,
		AllowedRoles:     NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
		RequiresApproval: true,
		RequiresReason:   true,
		NotifyRoles:      []Role{RoleCommercialManager},
		NextSteps:        []string{"Informar el motivo del rechazo al cliente"},
	},
	{
		From:         StatusApproved,
		To:           StatusPendingObjects,
		AllowedRoles: NewRoleSet(RoleCommercialManager, RoleGeneralAdministrator),
		NotifyRoles:  []Role{RoleOperationsManager, RoleAdministrativeManager},
		NextSteps:    []string{"Esperar la validación del médico tratante"},
	},
	{
		From:             StatusPendingObjects,
		To:               StatusDoctorApproved,
		AllowedRoles:     NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
		RequiresApproval: true,
		Conditions:       []string{"El médico confirmó la lista de equipos"},
		NotifyRoles:      []Role{RoleWarehouseLead, RoleCommercialManager},
		NextSteps:        []string{"Confirmar existencias en almacén"},
	},
	{
		From:             StatusPendingObjects,
		To:               StatusDoctorRejected,
		AllowedRoles:     NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
		RequiresApproval: true,
		RequiresReason:   true,
		NotifyRoles:      []Role{RoleCommercialManager},
		NextSteps:        []string{"Revisar la prescripción con el médico"},
	},
	{
		From:         StatusDoctorApproved,
		To:           StatusObjectsConfirmed,
		AllowedRoles: NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		Conditions:   []string{"Todos los equipos están disponibles en inventario"},
		NotifyRoles:  []Role{RoleOperationsManager},
		NextSteps:    []string{"Iniciar la preparación de los equipos"},
	},
	{
		From:         StatusObjectsConfirmed,
		To:           StatusInPreparation,
		AllowedRoles: NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		NotifyRoles:  []Role{RoleWarehouseLead, RoleGeneralAdministrator},
		NextSteps:    []string{"Sanitizar y empacar los equipos"},
	},
	{
		From:         StatusInPreparation,
		To:           StatusReadyForTechnicians,
		AllowedRoles: NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		Conditions:   []string{"Checklist de preparación completado"},
		NotifyRoles:  []Role{RoleOperationsManager},
		NextSteps:    []string{"Asignar técnicos para la entrega"},
	},
	{
		From:         StatusReadyForTechnicians,
		To:           StatusAssigned,
		AllowedRoles: NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
		NotifyRoles:  []Role{RoleTechnician},
		NextSteps:    []string{"Recoger los equipos en almacén"},
	},
	{
		From:         StatusAssigned,
		To:           StatusInTransit,
		AllowedRoles: NewRoleSet(RoleTechnician, RoleGeneralAdministrator),
		NotifyRoles:  []Role{RoleOperationsManager},
		NextSteps:    []string{"Entregar e instalar en el domicilio del paciente"},
	},
	{
		From:         StatusInTransit,
		To:           StatusInProgress,
		AllowedRoles: NewRoleSet(RoleTechnician, RoleGeneralAdministrator),
		Conditions:   []string{"Evidencia de entrega subida desde dispositivo móvil"},
		NotifyRoles:  []Role{RoleCommercialManager, RoleOperationsManager},
		NextSteps:    []string{"Renta activa: monitorear el período de uso"},
	},
	{
		From:         StatusInProgress,
		To:           StatusReturned,
		AllowedRoles: NewRoleSet(RoleTechnician, RoleWarehouseLead, RoleGeneralAdministrator),
		Conditions:   []string{"Los equipos fueron recogidos y revisados"},
		NotifyRoles:  []Role{RoleAdministrativeManager, RoleFinance},
		NextSteps:    []string{"Cerrar la orden y facturar"},
	},
	{
		From:             StatusReturned,
		To:               StatusCompleted,
		AllowedRoles:     NewRoleSet(RoleAdministrativeManager, RoleFinance, RoleGeneralAdministrator),
		RequiresApproval: true,
		Conditions:       []string{"Facturación conciliada"},
		NotifyRoles:      []Role{RoleCommercialManager, RoleFinance, RoleGeneralAdministrator},
		NextSteps:        []string{},
	},
}

type transitionKey struct {
	from OrderStatus
	to   OrderStatus
}

// transitionIndex — каталог, проиндексированный по (from, to) для O(1) поиска.
var transitionIndex = buildTransitionIndex()

func buildTransitionIndex() map[transitionKey]*TransitionEdge {
	index := make(map[transitionKey]*TransitionEdge, len(transitionCatalog))
	for i := range transitionCatalog {
		edge := &transitionCatalog[i]
		key := transitionKey{from: edge.From, to: edge.To}
		if _, dup := index[key]; dup {
			panic("дубликат ребра в каталоге переходов: " + string(edge.From) + " -> " + string(edge.To))
		}
		if edge.From.IsTerminal() {
			panic("ребро из финального статуса: " + string(edge.From))
		}
		index[key] = edge
	}
	return index
}

// Transitions возвращает копию каталога (для тестов и выгрузок).
func Transitions() []TransitionEdge {
	out := make([]TransitionEdge, len(transitionCatalog))
	copy(out, transitionCatalog)
	return out
}

// FindTransition — ребро для пары (from, to), если оно есть в каталоге.
func FindTransition(from, to OrderStatus) (*TransitionEdge, bool) {
	edge, ok := transitionIndex[transitionKey{from: from, to: to}]
	return edge, ok
}

// ValidateTransition проверяет переход по каталогу. Вердикт валиден только
// когда прошли все три проверки: роль, подтверждение, причина. Метаданные
// ребра возвращаются в любом случае.
func ValidateTransition(from, to OrderStatus, role Role, approvalGiven, reasonGiven bool) Verdict {
	edge, ok := FindTransition(from, to)
	if !ok {
		return Verdict{
			Valid:        false,
			AllowedRoles: []Role{},
			Conditions:   []string{},
			NextSteps:    []string{},
			Errors: []TransitionError{{
				Code:    ErrNoSuchTransition,
				Message: "No existe una transición de " + string(from) + " a " + string(to),
			}},
		}
	}

	verdict := Verdict{
		AllowedRoles:     edge.AllowedRoles.List(),
		RequiresApproval: edge.RequiresApproval,
		RequiresReason:   edge.RequiresReason,
		Conditions:       edge.Conditions,
		NextSteps:        edge.NextSteps,
	}
	// Ребра без условий/шагов отдают [], а не null: форма ответа стабильна.
	if verdict.Conditions == nil {
		verdict.Conditions = []string{}
	}
	if verdict.NextSteps == nil {
		verdict.NextSteps = []string{}
	}

	if !edge.AllowedRoles.Contains(role) {
		verdict.Errors = append(verdict.Errors, TransitionError{
			Code:    ErrRoleNotAllowed,
			Message: "El rol " + string(role) + " no puede realizar esta transición",
		})
	}
	if edge.RequiresApproval && !approvalGiven {
		verdict.Errors = append(verdict.Errors, TransitionError{
			Code:    ErrApprovalRequired,
			Message: "Esta transición requiere aprobación explícita",
		})
	}
	if edge.RequiresReason && !reasonGiven {
		verdict.Errors = append(verdict.Errors, TransitionError{
			Code:    ErrReasonRequired,
			Message: "Esta transición requiere indicar un motivo",
		})
	}

	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}

// ListAvailableTransitions — все ребра из статуса, доступные данной роли.
// Используется для построения меню "что я могу сделать дальше".
func ListAvailableTransitions(from OrderStatus, role Role) []TransitionEdge {
	available := make([]TransitionEdge, 0, 2)
	for _, edge := range transitionCatalog {
		if edge.From == from && edge.AllowedRoles.Contains(role) {
			available = append(available, edge)
		}
	}
	return available
}
