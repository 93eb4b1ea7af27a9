package workflow

import "fmt"

// Role — бизнес-роль пользователя. Значения совпадают с тем, что хранится
// в JWT и показывается клиенту (продукт испаноязычный).
type Role string

const (
	RoleCommercialManager     Role = "Gerente Comercial"
	RoleOperationsManager     Role = "Gerente Operativo"
	RoleWarehouseLead         Role = "Jefe de Almacén"
	RoleTechnician            Role = "Técnico"
	RoleAdministrativeManager Role = "Gerente Administrativo"
	RoleFinance               Role = "Finanzas"
	RoleGeneralAdministrator  Role = "Administrador General"
)

var AllRoles = []Role{
	RoleCommercialManager,
	RoleOperationsManager,
	RoleWarehouseLead,
	RoleTechnician,
	RoleAdministrativeManager,
	RoleFinance,
	RoleGeneralAdministrator,
}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("неизвестная роль: %q", raw)
	}
	return r, nil
}

// RoleSet — множество ролей для ребер графа и правил.
type RoleSet map[Role]bool

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

func (s RoleSet) Contains(r Role) bool { return s[r] }

// List возвращает роли в стабильном порядке AllRoles.
func (s RoleSet) List() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles {
		if s[r] {
			out = append(out, r)
		}
	}
	return out
}
