package deadline

import (
	"errors"
	"fmt"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Resolve picks the remediation for a case. A punishmentType equal to terminal
// never has one. Otherwise the first rule whose filters all hold wins; later
// rules are not consulted even when they are more specific.
//
// Rules with negative days are skipped. Each skip is reported in the returned
// error, wrapping shared.ErrConfiguration, alongside a usable Resolution.
func Resolve(punishmentType string, roles shared.RoleSet, rules []Rule, terminal string) (Resolution, error) {
	if terminal != "" && punishmentType == terminal {
		return NoRemediation(), nil
	}
	var issues []error
	for i, rule := range rules {
		if rule.Days < 0 {
			issues = append(issues, fmt.Errorf("%w: deadline rule %d has negative days (%d)", shared.ErrConfiguration, i, rule.Days))
			continue
		}
		if rule.matches(punishmentType, roles) {
			return Resolution{Days: rule.Days, Task: rule.Task}, errors.Join(issues...)
		}
	}
	return NoRemediation(), errors.Join(issues...)
}

func (r Rule) matches(punishmentType string, roles shared.RoleSet) bool {
	if r.PunishmentType != "" && r.PunishmentType != punishmentType {
		return false
	}
	if r.RankRoleID != "" && !roles.Has(r.RankRoleID) {
		return false
	}
	if r.DepartmentRoleID != "" && !roles.Has(r.DepartmentRoleID) {
		return false
	}
	return true
}
