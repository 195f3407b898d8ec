package audit

import "time"

// Action names recorded in the action log.
const (
	ActionReprimandCreate       = "REPRIMAND_CREATE"
	ActionReprimandUpdateStatus = "REPRIMAND_UPDATE_STATUS"
	ActionReprimandDelete       = "REPRIMAND_DELETE"
	ActionPermissionsUpdate     = "PERMISSIONS_UPDATE"
	ActionLogicSettingsUpdate   = "LOGIC_SETTINGS_UPDATE"
	ActionCharterUpdate         = "CHARTER_UPDATE"
	ActionRolesSync             = "ROLES_SYNC"
)

// Entry is a single action log record to be written.
type Entry struct {
	ActorID   string
	ActorName string
	Action    string
	Details   map[string]any
}

// TimelineFilters narrows the action log listing.
type TimelineFilters struct {
	Actor    string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one stored action log record.
type TimelineRow struct {
	ID        int64          `json:"id"`
	ActorID   string         `json:"user_id"`
	ActorName string         `json:"user_name"`
	Action    string         `json:"action_type"`
	Details   map[string]any `json:"details,omitempty"`
	At        time.Time      `json:"created_at"`
}

// PagingInfo menyimpan metadata pagination sederhana.
type PagingInfo struct {
	Page     int  `json:"page"`
	HasNext  bool `json:"has_next"`
	PageSize int  `json:"page_size"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}
