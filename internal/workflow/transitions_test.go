package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCodes(v Verdict) []string {
	codes := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

// Каждая пара статусов вне каталога должна давать структурный отказ,
// а не пустой или частичный вердикт.
func TestValidateTransitionExhaustive(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if _, ok := FindTransition(from, to); ok {
				continue
			}
			verdict := ValidateTransition(from, to, RoleGeneralAdministrator, true, true)
			assert.False(t, verdict.Valid, "%s -> %s не должен быть валидным", from, to)
			assert.Equal(t, []string{ErrNoSuchTransition}, errorCodes(verdict))
			assert.NotNil(t, verdict.AllowedRoles)
			assert.Empty(t, verdict.AllowedRoles)
			assert.NotNil(t, verdict.Conditions)
			assert.NotNil(t, verdict.NextSteps)
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	for _, status := range AllStatuses {
		if !status.IsTerminal() {
			continue
		}
		for _, role := range AllRoles {
			assert.Empty(t, ListAvailableTransitions(status, role),
				"из финального статуса %s не должно быть переходов (роль %s)", status, role)
		}
	}
}

// Для каждого ребра: разрешенная роль проходит ролевую проверку,
// посторонняя — получает отказ по роли.
func TestRoleGatingPerEdge(t *testing.T) {
	for _, edge := range Transitions() {
		allowed := edge.AllowedRoles.List()
		require.NotEmpty(t, allowed, "ребро %s -> %s без ролей", edge.From, edge.To)

		verdict := ValidateTransition(edge.From, edge.To, allowed[0], true, true)
		assert.True(t, verdict.Valid, "%s -> %s должно проходить для %s", edge.From, edge.To, allowed[0])

		for _, role := range AllRoles {
			if edge.AllowedRoles.Contains(role) {
				continue
			}
			verdict := ValidateTransition(edge.From, edge.To, role, true, true)
			assert.False(t, verdict.Valid)
			assert.Contains(t, errorCodes(verdict), ErrRoleNotAllowed,
				"%s -> %s для роли %s", edge.From, edge.To, role)
		}
	}
}

// Подтверждение и причина проверяются независимо: не хватает обоих —
// в вердикте обе ошибки сразу.
func TestApprovalAndReasonAccumulate(t *testing.T) {
	verdict := ValidateTransition(StatusCreated, StatusRejected, RoleOperationsManager, false, false)
	assert.False(t, verdict.Valid)
	assert.ElementsMatch(t, []string{ErrApprovalRequired, ErrReasonRequired}, errorCodes(verdict))
}

func TestCreatedToApprovedWithApprovalOnly(t *testing.T) {
	verdict := ValidateTransition(StatusCreated, StatusApproved, RoleOperationsManager, true, false)
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Errors)
	assert.True(t, verdict.RequiresApproval)
	assert.False(t, verdict.RequiresReason)
}

func TestCreatedToRejectedRequiresReason(t *testing.T) {
	verdict := ValidateTransition(StatusCreated, StatusRejected, RoleOperationsManager, true, false)
	assert.False(t, verdict.Valid)
	assert.Equal(t, []string{ErrReasonRequired}, errorCodes(verdict))
}

// Метаданные ребра возвращаются и при отказе: UI объясняет, кто мог бы
// выполнить переход и что для этого нужно.
func TestVerdictCarriesMetadataOnDenial(t *testing.T) {
	verdict := ValidateTransition(StatusCreated, StatusApproved, RoleTechnician, false, false)
	assert.False(t, verdict.Valid)
	assert.Contains(t, verdict.AllowedRoles, RoleOperationsManager)
	assert.Contains(t, verdict.AllowedRoles, RoleGeneralAdministrator)
	assert.True(t, verdict.RequiresApproval)
	assert.NotEmpty(t, verdict.NextSteps)
}

// Списки в вердикте никогда не nil: UI всегда получает [], а не null,
// независимо от того, есть ли у ребра условия и следующие шаги.
func TestVerdictSlicesNeverNil(t *testing.T) {
	for _, edge := range Transitions() {
		verdict := ValidateTransition(edge.From, edge.To, RoleGeneralAdministrator, true, true)
		assert.NotNil(t, verdict.AllowedRoles, "%s -> %s", edge.From, edge.To)
		assert.NotNil(t, verdict.Conditions, "%s -> %s", edge.From, edge.To)
		assert.NotNil(t, verdict.NextSteps, "%s -> %s", edge.From, edge.To)
	}
}

// Проверка чистая: повторный вызов с теми же аргументами дает тот же вердикт.
func TestValidateTransitionIdempotent(t *testing.T) {
	first := ValidateTransition(StatusInTransit, StatusInProgress, RoleTechnician, false, false)
	second := ValidateTransition(StatusInTransit, StatusInProgress, RoleTechnician, false, false)
	assert.Equal(t, first, second)
}

func TestListAvailableTransitionsFiltersByRole(t *testing.T) {
	forOps := ListAvailableTransitions(StatusCreated, RoleOperationsManager)
	require.Len(t, forOps, 2)

	forTechnician := ListAvailableTransitions(StatusCreated, RoleTechnician)
	assert.Empty(t, forTechnician)

	// Суперроль видит все ребра из статуса.
	forAdmin := ListAvailableTransitions(StatusCreated, RoleGeneralAdministrator)
	assert.Len(t, forAdmin, 2)
}

func TestTransitionsReturnsCopy(t *testing.T) {
	edges := Transitions()
	require.NotEmpty(t, edges)
	original := edges[0].To
	edges[0].To = "mutated"

	fresh := Transitions()
	assert.Equal(t, original, fresh[0].To)
}
