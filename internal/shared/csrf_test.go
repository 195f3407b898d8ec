package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newTestSessions(t)
	sess, err := sm.Load(context.Background(), requestWith(nil))
	require.NoError(t, err)
	csrf := NewCSRFManager("csrf-secret")

	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "anything"), ErrCSRFTokenMissing)

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, token+"x"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)

	rotated := csrf.Rotate(sess)
	assert.NotEqual(t, token, rotated)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, token), ErrCSRFTokenMismatch)
}

func TestEnsureTokenWithoutSession(t *testing.T) {
	_, err := NewCSRFManager("s").EnsureToken(context.Background(), nil)
	assert.Error(t, err)
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet("b", " a ", "", "b")
	assert.Equal(t, []string{"a", "b"}, set.IDs())
	assert.True(t, set.Has("a"))
	assert.False(t, set.Has(""))

	var p *Principal
	assert.Empty(t, p.Roles())
	assert.Empty(t, p.Name())
	assert.Equal(t, "mod", (&Principal{Username: "mod"}).Name())
}
