package auth

import "github.com/reprimand-panel/reprimand-panel/internal/shared"

// StateSessionKey holds the OAuth state between redirect and callback.
const StateSessionKey = "oauth_state"

// Profile is what the frontend learns about the logged-in user.
type Profile struct {
	User        *shared.Principal `json:"user"`
	Permissions []string          `json:"permissions"`
	CSRFToken   string            `json:"csrf_token"`
}
