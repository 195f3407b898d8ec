// Package sessiontest builds requests that carry a Redis-backed session, using
// an in-process miniredis server.
package sessiontest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
	_ "github.com/reprimand-panel/reprimand-panel/internal/testing/guard"
)

// Manager starts a miniredis server for the test and returns a session manager on it.
func Manager(t testing.TB) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "panel_session", "test-secret", time.Hour, false)
}

// Request returns a request whose context holds a session for principal.
// A nil principal yields an anonymous session.
func Request(t testing.TB, method, target, body string, principal *shared.Principal) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	sess, err := Manager(t).Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if principal != nil {
		sess.SetPrincipal(principal)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}
