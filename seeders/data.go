package seeders

import "rental-system/internal/workflow"

type userSeed struct {
	Name string
	Role workflow.Role
}

// usersData — по демо-пользователю на каждую роль, чтобы после сидирования
// можно было проверить весь цикл заявки вручную.
var usersData = []userSeed{
	{Name: "Laura Jiménez", Role: workflow.RoleCommercialManager},
	{Name: "Carlos Mendoza", Role: workflow.RoleOperationsManager},
	{Name: "Rosa Delgado", Role: workflow.RoleWarehouseLead},
	{Name: "Miguel Herrera", Role: workflow.RoleTechnician},
	{Name: "Patricia Soto", Role: workflow.RoleAdministrativeManager},
	{Name: "Andrés Valdés", Role: workflow.RoleFinance},
	{Name: "Elena Castillo", Role: workflow.RoleGeneralAdministrator},
}
