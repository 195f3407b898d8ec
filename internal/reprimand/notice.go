package reprimand

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
	"github.com/reprimand-panel/reprimand-panel/internal/identity"
)

const (
	colorReprimand = 0xff4d4d
	colorTerminal  = 0x000000

	// Discord rejects embeds whose field values are empty or longer than this.
	maxFieldValue = 1024
	maxTitle      = 256
)

// Notice renders the channel announcement for a newly issued case.
func (c Case) Notice(terminal string) identity.Notice {
	color := colorReprimand
	if terminal = deadline.NormalizeType(terminal); terminal != "" && c.PunishmentType == terminal {
		color = colorTerminal
	}
	fields := []identity.NoticeField{
		{Name: "Issued by", Value: mention(c.IssuerID), Inline: true},
		{Name: "Recipient", Value: mention(c.RecipientID), Inline: true},
		{Name: "Violation", Value: fieldValue(c.Reason, "not specified")},
		{Name: "Task", Value: fieldValue(c.Task, deadline.NoTask)},
		{Name: "Evidence", Value: fieldValue(c.Evidence, "not provided")},
	}
	if c.Days > 0 {
		fields = append(fields, identity.NoticeField{Name: "Deadline", Value: fmt.Sprintf("%d days", c.Days)})
	}
	return identity.Notice{
		Content: fmt.Sprintf("Attention, %s!", mention(c.RecipientID)),
		Title:   clip("❗ "+c.PunishmentType, maxTitle),
		Color:   color,
		Fields:  fields,
		Footer:  fmt.Sprintf("Reprimand ID: %d", c.ID),
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// fieldValue fits v into an embed field, substituting fallback for blank text.
func fieldValue(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return clip(v, maxFieldValue)
}

// clip cuts s to at most limit runes, marking the cut with an ellipsis.
func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
