package reprimand

import (
	"strings"
	"time"

	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
)

// Status is the lifecycle state of a case. The set is open; only the values
// below carry behaviour.
type Status string

const (
	StatusActive  Status = "active"
	StatusServed  Status = "served"
	StatusRevoked Status = "revoked"
)

// EndsPunishment reports whether moving a case into s lifts the reprimand role.
func (s Status) EndsPunishment() bool {
	return s == StatusServed || s == StatusRevoked
}

// Case is a recorded reprimand. Task, Days and Deadline are fixed when the case
// is created and never recomputed.
type Case struct {
	ID             int64      `json:"id"`
	IssuerID       string     `json:"issuer_id"`
	IssuerName     string     `json:"issuer_name"`
	RecipientID    string     `json:"recipient_id"`
	RecipientName  string     `json:"recipient_name"`
	PunishmentType string     `json:"punishment_type"`
	Reason         string     `json:"reason"`
	Evidence       string     `json:"evidence"`
	Task           string     `json:"task"`
	Days           int        `json:"days"`
	Deadline       *time.Time `json:"expires_at"`
	Status         Status     `json:"status"`
	IssuedAt       time.Time  `json:"issued_at"`
}

// CreateInput is the issuer-supplied part of a new case.
type CreateInput struct {
	RecipientID    string `json:"recipient_id" validate:"required,numeric,max=32"`
	Reason         string `json:"reason" validate:"required,max=255"`
	PunishmentType string `json:"punishment_type" validate:"required,max=100"`
	Evidence       string `json:"evidence" validate:"max=4000"`
}

func (in CreateInput) normalized() CreateInput {
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	in.Reason = strings.TrimSpace(in.Reason)
	in.PunishmentType = deadline.NormalizeType(in.PunishmentType)
	in.Evidence = strings.TrimSpace(in.Evidence)
	return in
}

// StatusInput changes the status of a case.
type StatusInput struct {
	Status Status `json:"status" validate:"required,max=50"`
}

// Effects lists the side effects due after a committed change. They are
// requests for the notification sink, not guarantees.
type Effects struct {
	Notify     bool `json:"notify"`
	AddRole    bool `json:"add_role"`
	RemoveRole bool `json:"remove_role"`
}

// Due reports whether any side effect is requested.
func (e Effects) Due() bool {
	return e.Notify || e.AddRole || e.RemoveRole
}

// Outcome pairs a case with the side effects its change requires.
type Outcome struct {
	Case    Case    `json:"case"`
	Effects Effects `json:"effects"`
}

func creationEffects() Effects {
	return Effects{Notify: true, AddRole: true}
}

func statusEffects(s Status) Effects {
	return Effects{RemoveRole: s.EndsPunishment()}
}

func deletionEffects() Effects {
	return Effects{RemoveRole: true}
}
