// Package charter stores the community charter and derives the list of
// citable rules from it.
package charter

import (
	"regexp"
	"strings"
	"time"
)

// Charter is the single charter document.
type Charter struct {
	Content           string     `json:"content"`
	LastUpdatedByID   string     `json:"last_updated_by_id,omitempty"`
	LastUpdatedByName string     `json:"last_updated_by_name,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// SaveInput is the editor's submission.
type SaveInput struct {
	Content string `json:"content" validate:"max=200000"`
}

// RuleOption is a citable charter rule, offered as a reprimand reason.
type RuleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
	rulePattern = regexp.MustCompile(`(?m)^((?:\d{1,2}\.?)+)[ \t]*(.*)$`)
)

// ParseRules extracts numbered lines such as "1.2 No spam" from the charter.
// Markup is treated as a line break.
func ParseRules(content string) []RuleOption {
	text := tagPattern.ReplaceAllString(content, "\n")
	matches := rulePattern.FindAllStringSubmatch(text, -1)
	rules := make([]RuleOption, 0, len(matches))
	for _, m := range matches {
		label := strings.TrimSpace(m[1] + " " + strings.TrimSpace(m[2]))
		rules = append(rules, RuleOption{Value: label, Label: label})
	}
	return rules
}
