package workflow

// VisibilityFlags — что роль видит в карточке заявки. Только для
// read-гейтинга UI, мутации этим не защищаются.
type VisibilityFlags struct {
	CanViewFinancialInfo    bool `json:"canViewFinancialInfo"`
	CanViewTechnicalDetails bool `json:"canViewTechnicalDetails"`
	CanViewPersonalInfo     bool `json:"canViewPersonalInfo"`
	CanViewInventoryDetails bool `json:"canViewInventoryDetails"`
	CanViewOrderHistory     bool `json:"canViewOrderHistory"`
	CanViewEvidence         bool `json:"canViewEvidence"`
}

// visibilityMatrix тотальна: запись есть у каждой роли.
var visibilityMatrix = map[Role]VisibilityFlags{
	RoleCommercialManager: {
		CanViewFinancialInfo: true,
		CanViewPersonalInfo:  true,
		CanViewOrderHistory:  true,
		CanViewEvidence:      true,
	},
	RoleOperationsManager: {
		CanViewTechnicalDetails: true,
		CanViewPersonalInfo:     true,
		CanViewInventoryDetails: true,
		CanViewOrderHistory:     true,
		CanViewEvidence:         true,
	},
	RoleWarehouseLead: {
		CanViewTechnicalDetails: true,
		CanViewInventoryDetails: true,
		CanViewOrderHistory:     true,
	},
	RoleTechnician: {
		CanViewTechnicalDetails: true,
		CanViewPersonalInfo:     true,
		CanViewEvidence:         true,
	},
	RoleAdministrativeManager: {
		CanViewFinancialInfo: true,
		CanViewPersonalInfo:  true,
		CanViewOrderHistory:  true,
		CanViewEvidence:      true,
	},
	RoleFinance: {
		CanViewFinancialInfo: true,
		CanViewOrderHistory:  true,
	},
	RoleGeneralAdministrator: {
		CanViewFinancialInfo:    true,
		CanViewTechnicalDetails: true,
		CanViewPersonalInfo:     true,
		CanViewInventoryDetails: true,
		CanViewOrderHistory:     true,
		CanViewEvidence:         true,
	},
}

// Visibility — флаги видимости для роли.
func Visibility(role Role) VisibilityFlags {
	return visibilityMatrix[role]
}

// EditPermissionSets — кто и что может делать с заявкой в данном статусе.
// Инвариант: CanDelete в любом статусе — только Administrador General.
type EditPermissionSets struct {
	CanEdit    RoleSet `json:"canEdit"`
	CanDelete  RoleSet `json:"canDelete"`
	CanApprove RoleSet `json:"canApprove"`
	CanReject  RoleSet `json:"canReject"`
	CanAssign  RoleSet `json:"canAssign"`
}

var adminOnly = NewRoleSet(RoleGeneralAdministrator)

// editMatrix тотальна: запись есть у каждого статуса.
var editMatrix = map[OrderStatus]EditPermissionSets{
	StatusCreated: {
		CanEdit:    NewRoleSet(RoleCommercialManager, RoleOperationsManager, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
		CanReject:  NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
		CanAssign:  NewRoleSet(),
	},
	StatusPendingObjects: {
		CanEdit:    NewRoleSet(RoleCommercialManager, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
		CanReject:  NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
		CanAssign:  NewRoleSet(),
	},
	StatusApproved: {
		CanEdit:    NewRoleSet(RoleCommercialManager, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusRejected: {
		CanEdit:    NewRoleSet(),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusDoctorApproved: {
		CanEdit:    NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusDoctorRejected: {
		CanEdit:    NewRoleSet(),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusObjectsConfirmed: {
		CanEdit:    NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusInPreparation: {
		CanEdit:    NewRoleSet(RoleWarehouseLead, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusReadyForTechnicians: {
		CanEdit:    NewRoleSet(RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
	},
	StatusAssigned: {
		CanEdit:    NewRoleSet(RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
	},
	StatusInTransit: {
		CanEdit:    NewRoleSet(RoleTechnician, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusInProgress: {
		CanEdit:    NewRoleSet(RoleTechnician, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusReturned: {
		CanEdit:    NewRoleSet(RoleAdministrativeManager, RoleFinance, RoleGeneralAdministrator),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(RoleAdministrativeManager, RoleFinance, RoleGeneralAdministrator),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
	StatusCompleted: {
		CanEdit:    NewRoleSet(),
		CanDelete:  adminOnly,
		CanApprove: NewRoleSet(),
		CanReject:  NewRoleSet(),
		CanAssign:  NewRoleSet(),
	},
}

// EditPermissions — наборы ролей для действий над заявкой в данном статусе.
func EditPermissions(status OrderStatus) EditPermissionSets {
	return editMatrix[status]
}

// CanEditOrder — может ли роль редактировать заявку в данном статусе.
func CanEditOrder(role Role, status OrderStatus) bool {
	return editMatrix[status].CanEdit.Contains(role)
}
