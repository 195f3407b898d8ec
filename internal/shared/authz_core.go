package shared

import "context"

// Panel permissions. Keys are opaque; unknown keys are simply never granted.
const (
	PermReprimandCreate       = "reprimand.create"
	PermReprimandUpdateStatus = "reprimand.update.status"
	PermReprimandDelete       = "reprimand.delete"

	PermSettingsView      = "settings.view"
	PermSettingsEdit      = "settings.edit"
	PermSettingsEditLogic = "settings.edit.logic"

	PermCharterView = "charter.view"
	PermCharterEdit = "charter.edit"

	PermLogsView = "logs.view"
)

// PermissionInfo describes a catalog entry for the settings UI.
type PermissionInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Catalog lists every grantable permission. The view keys only gate what the
// frontend shows; the API does not check them.
func Catalog() []PermissionInfo {
	return []PermissionInfo{
		{Key: PermReprimandCreate, Label: "Issue reprimands"},
		{Key: PermReprimandUpdateStatus, Label: "Change reprimand status"},
		{Key: PermReprimandDelete, Label: "Delete reprimands"},
		{Key: PermSettingsView, Label: "View settings"},
		{Key: PermSettingsEdit, Label: "Edit permissions"},
		{Key: PermCharterView, Label: "View charter"},
		{Key: PermCharterEdit, Label: "Edit charter"},
		{Key: PermLogsView, Label: "View action log"},
		{Key: PermSettingsEditLogic, Label: "Edit reprimand logic"},
	}
}

// AdminScopes is the bootstrap permission set granted to the first admin role.
func AdminScopes() []string {
	return []string{
		PermSettingsView,
		PermSettingsEdit,
		PermSettingsEditLogic,
		PermReprimandCreate,
		PermReprimandUpdateStatus,
		PermReprimandDelete,
		PermCharterView,
		PermCharterEdit,
		PermLogsView,
	}
}

// Authorizer decides whether a principal holds a permission. It returns
// ErrUnauthenticated for a nil principal and ErrForbidden on denial.
type Authorizer interface {
	Check(ctx context.Context, p *Principal, key string) error
}
