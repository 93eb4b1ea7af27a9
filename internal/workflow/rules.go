package workflow

import "time"

// PermissionRule — именованный фильтр "кто может делать action над resource".
// Правила аддитивны: если на пару (resource, action) нет ни одного включенного
// правила, проверка по правилам пропускается (но остаются статусные,
// временные и девайсные проверки).
type PermissionRule struct {
	Name        string
	Resource    string
	Action      string
	Roles       RoleSet
	Priority    int
	Enabled     bool
	DeviceTypes []string // пусто = любой девайс
}

// WorkingHours — окно рабочего времени (локальное). Конфигурационная
// константа: меняется только редеплоем.
type WorkingHours struct {
	From int // час начала, включительно
	To   int // час конца, не включительно
}

var DefaultWorkingHours = WorkingHours{From: 8, To: 18}

// Contains — попадает ли момент времени в окно.
func (w WorkingHours) Contains(t time.Time) bool {
	hour := t.Hour()
	return hour >= w.From && hour < w.To
}

// DefaultRules — базовый набор правил движка. Девайсное ограничение на
// загрузку доказательств: только с мобильного (техник в поле).
func DefaultRules() []PermissionRule {
	return []PermissionRule{
		{
			Name:     "aprobacion-operativa",
			Resource: "orders",
			Action:   "approve",
			Roles:    NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
			Priority: 10,
			Enabled:  true,
		},
		{
			Name:     "rechazo-operativo",
			Resource: "orders",
			Action:   "reject",
			Roles:    NewRoleSet(RoleOperationsManager, RoleAdministrativeManager, RoleGeneralAdministrator),
			Priority: 10,
			Enabled:  true,
		},
		{
			Name:     "asignacion-tecnicos",
			Resource: "orders",
			Action:   "assign",
			Roles:    NewRoleSet(RoleOperationsManager, RoleGeneralAdministrator),
			Priority: 20,
			Enabled:  true,
		},
		{
			// Набор ролей совпадает с ребром returned -> completed:
			// закрытие заявки — не операционное approve.
			Name:     "cierre-financiero",
			Resource: "orders",
			Action:   "close",
			Roles:    NewRoleSet(RoleAdministrativeManager, RoleFinance, RoleGeneralAdministrator),
			Priority: 15,
			Enabled:  true,
		},
		{
			Name:        "evidencia-solo-movil",
			Resource:    "evidence",
			Action:      "upload",
			Roles:       NewRoleSet(RoleTechnician, RoleGeneralAdministrator),
			Priority:    30,
			Enabled:     true,
			DeviceTypes: []string{"mobile"},
		},
		{
			Name:     "info-financiera",
			Resource: "financial",
			Action:   "view",
			Roles:    NewRoleSet(RoleFinance, RoleAdministrativeManager, RoleGeneralAdministrator),
			Priority: 40,
			Enabled:  true,
		},
	}
}

type ruleKey struct {
	resource string
	action   string
}

// ruleIndex — включенные правила, проиндексированные по (resource, action).
type ruleIndex map[ruleKey][]*PermissionRule

func indexRules(rules []PermissionRule) ruleIndex {
	index := make(ruleIndex, len(rules))
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}
		key := ruleKey{resource: rule.Resource, action: rule.Action}
		index[key] = append(index[key], rule)
	}
	return index
}

func (idx ruleIndex) matching(resource, action string) []*PermissionRule {
	return idx[ruleKey{resource: resource, action: action}]
}

// roleAllowedByRules: true, если правил нет вовсе, либо роль входит в
// объединение ролей совпавших правил.
func (idx ruleIndex) roleAllowedByRules(resource, action string, role Role) bool {
	rules := idx.matching(resource, action)
	if len(rules) == 0 {
		return true
	}
	for _, rule := range rules {
		if rule.Roles.Contains(role) {
			return true
		}
	}
	return false
}

// deviceAllowedByRules: девайсная проверка по совпавшим правилам. Правило без
// DeviceTypes девайс не ограничивает.
func (idx ruleIndex) deviceAllowedByRules(resource, action, deviceType string) (allowed bool, required []string) {
	rules := idx.matching(resource, action)
	restricted := false
	for _, rule := range rules {
		if len(rule.DeviceTypes) == 0 {
			continue
		}
		restricted = true
		required = append(required, rule.DeviceTypes...)
		for _, dt := range rule.DeviceTypes {
			if dt == deviceType {
				return true, nil
			}
		}
	}
	if !restricted {
		return true, nil
	}
	return false, required
}
