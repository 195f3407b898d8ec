package deadline

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// NoTask is the task text used whenever no remediation applies.
const NoTask = "none required"

// Rule maps a punishment type and the recipient's rank/department roles to a
// remediation period. Empty filters match anything.
type Rule struct {
	PunishmentType   string `json:"punishment_type,omitempty" validate:"max=100"`
	RankRoleID       string `json:"rank_role_id,omitempty" validate:"max=64"`
	DepartmentRoleID string `json:"department_role_id,omitempty" validate:"max=64"`
	Days             int    `json:"days" validate:"min=0,max=3650"`
	Task             string `json:"task" validate:"max=2000"`
}

// LogicSettings is the editable logic document. Rule order is significant.
type LogicSettings struct {
	DeadlineRules []Rule `json:"deadline_rules" validate:"max=200,dive"`
	// Issues lists stored entries that could not be read. Set on reads only.
	Issues []RuleIssue `json:"issues,omitempty"`
	// DiscardBroken lets a save drop the entries reported in Issues.
	DiscardBroken bool `json:"discard_broken,omitempty"`
}

// Resolution is the outcome of matching a case against the rule list.
type Resolution struct {
	Days int    `json:"days"`
	Task string `json:"task"`
}

// NoRemediation is the result for terminal punishments and unmatched cases.
func NoRemediation() Resolution {
	return Resolution{Days: 0, Task: NoTask}
}

// Deadline returns from+Days when Days is positive and nil otherwise.
func (r Resolution) Deadline(from time.Time) *time.Time {
	if r.Days <= 0 {
		return nil
	}
	at := from.Add(time.Duration(r.Days) * 24 * time.Hour)
	return &at
}

// NormalizeType canonicalises a punishment type so visually identical
// strings compare equal.
func NormalizeType(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (r Rule) normalized() Rule {
	r.PunishmentType = NormalizeType(r.PunishmentType)
	r.RankRoleID = strings.TrimSpace(r.RankRoleID)
	r.DepartmentRoleID = strings.TrimSpace(r.DepartmentRoleID)
	r.Task = strings.TrimSpace(r.Task)
	return r
}
