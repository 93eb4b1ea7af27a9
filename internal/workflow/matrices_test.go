package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Матрица видимости тотальна и у суперроли все флаги включены.
func TestVisibilityMatrixTotal(t *testing.T) {
	for _, role := range AllRoles {
		_, ok := visibilityMatrix[role]
		assert.True(t, ok, "нет записи видимости для роли %s", role)
	}

	admin := Visibility(RoleGeneralAdministrator)
	assert.True(t, admin.CanViewFinancialInfo)
	assert.True(t, admin.CanViewTechnicalDetails)
	assert.True(t, admin.CanViewPersonalInfo)
	assert.True(t, admin.CanViewInventoryDetails)
	assert.True(t, admin.CanViewOrderHistory)
	assert.True(t, admin.CanViewEvidence)
}

func TestVisibilityRoleSeparation(t *testing.T) {
	warehouse := Visibility(RoleWarehouseLead)
	assert.False(t, warehouse.CanViewFinancialInfo)
	assert.True(t, warehouse.CanViewInventoryDetails)

	finance := Visibility(RoleFinance)
	assert.True(t, finance.CanViewFinancialInfo)
	assert.False(t, finance.CanViewInventoryDetails)
}

// Удаление в любом статусе доступно только Administrador General.
func TestCanDeleteIsAdminOnlyForEveryStatus(t *testing.T) {
	for _, status := range AllStatuses {
		sets := EditPermissions(status)
		require.NotNil(t, sets.CanDelete, "нет записи редактирования для статуса %s", status)
		assert.Equal(t, []Role{RoleGeneralAdministrator}, sets.CanDelete.List(),
			"canDelete для статуса %s", status)
	}
}

func TestEditMatrixTotal(t *testing.T) {
	for _, status := range AllStatuses {
		_, ok := editMatrix[status]
		assert.True(t, ok, "нет записи редактирования для статуса %s", status)
	}
}

// В финальных статусах редактирование закрыто для всех.
func TestTerminalStatusesNotEditable(t *testing.T) {
	for _, status := range []OrderStatus{StatusRejected, StatusDoctorRejected, StatusCompleted} {
		sets := EditPermissions(status)
		assert.Empty(t, sets.CanEdit.List(), "canEdit в финальном статусе %s", status)
		assert.Empty(t, sets.CanApprove.List())
		assert.Empty(t, sets.CanReject.List())
		assert.Empty(t, sets.CanAssign.List())
	}
}

func TestCanEditOrder(t *testing.T) {
	assert.True(t, CanEditOrder(RoleCommercialManager, StatusCreated))
	assert.False(t, CanEditOrder(RoleTechnician, StatusCreated))
	assert.True(t, CanEditOrder(RoleTechnician, StatusInTransit))
	assert.True(t, CanEditOrder(RoleGeneralAdministrator, StatusInPreparation))
	assert.False(t, CanEditOrder(RoleGeneralAdministrator, StatusCompleted))
}
