package deadline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

type storedRule struct {
	PunishmentType   string          `json:"punishment_type"`
	RankRoleID       string          `json:"rank_role_id"`
	DepartmentRoleID string          `json:"department_role_id"`
	Days             json.RawMessage `json:"days"`
	Task             string          `json:"task"`
}

// RuleIssue describes a stored rule element that could not be used. Index is
// -1 when the stored document is not a list at all.
type RuleIssue struct {
	Index int             `json:"index"`
	Error string          `json:"error"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// DecodeRules reads a stored rule list element by element. Elements that cannot
// be decoded, or whose days is not an integer, are left out and reported in
// the returned error (wrapping shared.ErrConfiguration). The remaining rules
// keep their relative order.
func DecodeRules(raw []byte) ([]Rule, error) {
	rules, issues := InspectRules(raw)
	return rules, issuesError(issues)
}

// InspectRules is DecodeRules with the unreadable elements returned as data,
// so an editor can show and repair them.
func InspectRules(raw []byte) ([]Rule, []RuleIssue) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Rule{}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []Rule{}, []RuleIssue{{Index: -1, Error: "deadline rules are not a list: " + err.Error(), Raw: json.RawMessage(raw)}}
	}
	rules := make([]Rule, 0, len(elems))
	var issues []RuleIssue
	for i, elem := range elems {
		var sr storedRule
		if err := json.Unmarshal(elem, &sr); err != nil {
			issues = append(issues, RuleIssue{Index: i, Error: err.Error(), Raw: elem})
			continue
		}
		days, err := parseDays(sr.Days)
		if err != nil {
			issues = append(issues, RuleIssue{Index: i, Error: err.Error(), Raw: elem})
			continue
		}
		rules = append(rules, Rule{
			PunishmentType:   sr.PunishmentType,
			RankRoleID:       sr.RankRoleID,
			DepartmentRoleID: sr.DepartmentRoleID,
			Days:             days,
			Task:             sr.Task,
		}.normalized())
	}
	return rules, issues
}

func issuesError(issues []RuleIssue) error {
	errs := make([]error, 0, len(issues))
	for _, is := range issues {
		if is.Index < 0 {
			errs = append(errs, fmt.Errorf("%w: %s", shared.ErrConfiguration, is.Error))
			continue
		}
		errs = append(errs, fmt.Errorf("%w: deadline rule %d: %s", shared.ErrConfiguration, is.Index, is.Error))
	}
	return errors.Join(errs...)
}

func parseDays(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("days missing")
	}
	days, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("days %s is not an integer", raw)
	}
	return days, nil
}

// ValidateRules checks a submitted rule list and returns it normalised.
// Failures wrap shared.ErrValidation.
func ValidateRules(v *validator.Validate, rules []Rule) ([]Rule, error) {
	settings := LogicSettings{DeadlineRules: make([]Rule, len(rules))}
	for i, r := range rules {
		settings.DeadlineRules[i] = r.normalized()
	}
	if err := v.Struct(settings); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}
	return settings.DeadlineRules, nil
}
