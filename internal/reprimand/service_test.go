package reprimand

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

type memoryRepo struct {
	mu      sync.Mutex
	cases   map[int64]Case
	nextID  int64
	entries []audit.Entry
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{cases: map[int64]Case{}}
}

func (m *memoryRepo) Create(ctx context.Context, c Case, entry func(Case) audit.Entry) (Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Case{}, m.err
	}
	m.nextID++
	c.ID = m.nextID
	m.cases[c.ID] = c
	m.entries = append(m.entries, entry(c))
	return c, nil
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status, entry audit.Entry) (Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return Case{}, fmt.Errorf("%w: reprimand %d", shared.ErrNotFound, id)
	}
	c.Status = status
	m.cases[id] = c
	m.entries = append(m.entries, entry)
	return c, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64, entry audit.Entry) (Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return Case{}, fmt.Errorf("%w: reprimand %d", shared.ErrNotFound, id)
	}
	delete(m.cases, id)
	m.entries = append(m.entries, entry)
	return c, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return Case{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) List(ctx context.Context, limit int) ([]Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Case, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubDirectory struct {
	members map[string]identity.Member
	err     error
	calls   int
	mu      sync.Mutex
}

func (d *stubDirectory) Member(ctx context.Context, userID string) (identity.Member, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.err != nil {
		return identity.Member{}, d.err
	}
	m, ok := d.members[userID]
	if !ok {
		return identity.Member{}, fmt.Errorf("%w: member %s", shared.ErrNotFound, userID)
	}
	return m, nil
}

func (d *stubDirectory) GuildRoles(ctx context.Context) ([]identity.Role, error) {
	return nil, nil
}

type stubRules struct {
	rules []deadline.Rule
}

func (s *stubRules) Resolve(ctx context.Context, punishmentType string, roles shared.RoleSet) (deadline.Resolution, error) {
	res, _ := deadline.Resolve(punishmentType, roles, s.rules, "dismissal")
	return res, nil
}

type keyAuthorizer map[string]bool

func (k keyAuthorizer) Check(ctx context.Context, p *shared.Principal, key string) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if !k[key] {
		return shared.ErrForbidden
	}
	return nil
}

type recordingDispatcher struct {
	outcomes []Outcome
	err      error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, outcome Outcome) error {
	d.outcomes = append(d.outcomes, outcome)
	return d.err
}

type fixture struct {
	repo       *memoryRepo
	directory  *stubDirectory
	rules      *stubRules
	dispatcher *recordingDispatcher
	service    *Service
	now        time.Time
}

var (
	moderator = &shared.Principal{ID: "1", Username: "mod", DisplayName: "Moderator", RoleIDs: []string{"MOD"}}
	allowAll  = keyAuthorizer{
		shared.PermReprimandCreate:       true,
		shared.PermReprimandUpdateStatus: true,
		shared.PermReprimandDelete:       true,
	}
)

func newFixture(authz shared.Authorizer) *fixture {
	f := &fixture{
		repo: newMemoryRepo(),
		directory: &stubDirectory{members: map[string]identity.Member{
			"1": {ID: "1", Username: "mod", DisplayName: "Sgt. Mod", RoleIDs: []string{"MOD"}},
			"2": {ID: "2", Username: "rookie", DisplayName: "Pvt. Rookie", RoleIDs: []string{"PVT", "MP"}},
		}},
		rules: &stubRules{rules: []deadline.Rule{
			{PunishmentType: "warning", RankRoleID: "PVT", Days: 3, Task: "write an essay"},
			{Days: 7, Task: "patrol duty"},
		}},
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	f.service = NewService(ServiceConfig{
		Repo:       f.repo,
		Authz:      authz,
		Directory:  f.directory,
		Rules:      f.rules,
		Dispatcher: f.dispatcher,
	})
	f.service.clock = func() time.Time { return f.now }
	return f
}

func warningFor(recipient string) CreateInput {
	return CreateInput{RecipientID: recipient, Reason: "1.2 Insubordination", PunishmentType: "warning", Evidence: "screenshot"}
}

func TestServiceCreate(t *testing.T) {
	f := newFixture(allowAll)

	outcome, err := f.service.Create(context.Background(), moderator, warningFor("2"))
	require.NoError(t, err)

	c := outcome.Case
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Sgt. Mod", c.IssuerName)
	assert.Equal(t, "Pvt. Rookie", c.RecipientName)
	assert.Equal(t, "write an essay", c.Task)
	assert.Equal(t, 3, c.Days)
	require.NotNil(t, c.Deadline)
	assert.Equal(t, f.now.Add(72*time.Hour), *c.Deadline)
	assert.Equal(t, StatusActive, c.Status)

	assert.Equal(t, Effects{Notify: true, AddRole: true}, outcome.Effects)
	require.Len(t, f.dispatcher.outcomes, 1)
	assert.Equal(t, outcome, f.dispatcher.outcomes[0])

	require.Len(t, f.repo.entries, 1)
	assert.Equal(t, audit.ActionReprimandCreate, f.repo.entries[0].Action)
	assert.Equal(t, int64(1), f.repo.entries[0].Details["reprimandId"])
}

func TestServiceCreateKeepsResolutionAfterRuleEdits(t *testing.T) {
	f := newFixture(allowAll)
	ctx := context.Background()

	outcome, err := f.service.Create(ctx, moderator, warningFor("2"))
	require.NoError(t, err)

	f.rules.rules = []deadline.Rule{{Days: 30, Task: "rewritten"}}

	stored, err := f.service.Get(ctx, outcome.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, "write an essay", stored.Task)
	assert.Equal(t, 3, stored.Days)
	assert.Equal(t, outcome.Case.Deadline, stored.Deadline)
}

func TestServiceCreateTerminalPunishment(t *testing.T) {
	f := newFixture(allowAll)
	in := warningFor("2")
	in.PunishmentType = " dismissal "

	outcome, err := f.service.Create(context.Background(), moderator, in)
	require.NoError(t, err)
	assert.Equal(t, "dismissal", outcome.Case.PunishmentType)
	assert.Equal(t, deadline.NoTask, outcome.Case.Task)
	assert.Zero(t, outcome.Case.Days)
	assert.Nil(t, outcome.Case.Deadline)
}

func TestServiceCreateRejectsBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	outage := fmt.Errorf("%w: discord member 2: status 502", shared.ErrUpstreamUnavailable)

	cases := []struct {
		name    string
		authz   shared.Authorizer
		p       *shared.Principal
		in      CreateInput
		dirErr  error
		wantErr error
	}{
		{"anonymous", allowAll, nil, warningFor("2"), nil, shared.ErrUnauthenticated},
		{"forbidden", keyAuthorizer{}, moderator, warningFor("2"), nil, shared.ErrForbidden},
		{"missing reason", allowAll, moderator, CreateInput{RecipientID: "2", PunishmentType: "warning"}, nil, shared.ErrValidation},
		{"blank type", allowAll, moderator, CreateInput{RecipientID: "2", Reason: "1.1", PunishmentType: "  "}, nil, shared.ErrValidation},
		{"recipient not a snowflake", allowAll, moderator, warningFor("@someone"), nil, shared.ErrValidation},
		{"unknown recipient", allowAll, moderator, warningFor("404"), nil, shared.ErrNotFound},
		{"directory outage", allowAll, moderator, warningFor("2"), outage, shared.ErrUpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.authz)
			f.directory.err = tc.dirErr

			_, err := f.service.Create(ctx, tc.p, tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, f.repo.cases)
			assert.Empty(t, f.repo.entries)
			assert.Empty(t, f.dispatcher.outcomes)
		})
	}
}

func TestServiceCreateIssuerWhoLeftKeepsLoginName(t *testing.T) {
	f := newFixture(allowAll)
	ghost := &shared.Principal{ID: "99", Username: "ghost", DisplayName: "Ghost"}

	outcome, err := f.service.Create(context.Background(), ghost, warningFor("2"))
	require.NoError(t, err)
	assert.Equal(t, "Ghost", outcome.Case.IssuerName)
}

func TestServiceCreateStoreFailureDispatchesNothing(t *testing.T) {
	f := newFixture(allowAll)
	f.repo.err = errors.New("serialization failure")

	_, err := f.service.Create(context.Background(), moderator, warningFor("2"))
	assert.Error(t, err)
	assert.Empty(t, f.dispatcher.outcomes)
}

func TestServiceSideEffectFailureIsNotFatal(t *testing.T) {
	f := newFixture(allowAll)
	f.dispatcher.err = errors.New("redis down")

	outcome, err := f.service.Create(context.Background(), moderator, warningFor("2"))
	require.NoError(t, err)
	assert.Contains(t, f.repo.cases, outcome.Case.ID)
}

func TestServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		status     Status
		removeRole bool
	}{
		{StatusServed, true},
		{StatusRevoked, true},
		{StatusActive, false},
		{"appealed", false},
	} {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(allowAll)
			created, err := f.service.Create(ctx, moderator, warningFor("2"))
			require.NoError(t, err)
			f.dispatcher.outcomes = nil

			outcome, err := f.service.UpdateStatus(ctx, moderator, created.Case.ID, StatusInput{Status: tc.status})
			require.NoError(t, err)
			assert.Equal(t, tc.status, outcome.Case.Status)
			assert.Equal(t, tc.removeRole, outcome.Effects.RemoveRole)
			assert.Equal(t, created.Case.Task, outcome.Case.Task)
			if tc.removeRole {
				assert.Len(t, f.dispatcher.outcomes, 1)
			} else {
				assert.Empty(t, f.dispatcher.outcomes)
			}
		})
	}
}

func TestServiceUpdateStatusErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(keyAuthorizer{shared.PermReprimandUpdateStatus: true})

	_, err := f.service.UpdateStatus(ctx, moderator, 77, StatusInput{Status: StatusServed})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.service.UpdateStatus(ctx, moderator, 77, StatusInput{Status: " "})
	assert.ErrorIs(t, err, shared.ErrValidation)

	f = newFixture(keyAuthorizer{})
	_, err = f.service.UpdateStatus(ctx, moderator, 1, StatusInput{Status: StatusServed})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(allowAll)
	created, err := f.service.Create(ctx, moderator, warningFor("2"))
	require.NoError(t, err)

	outcome, err := f.service.Delete(ctx, moderator, created.Case.ID)
	require.NoError(t, err)
	assert.Equal(t, Effects{RemoveRole: true}, outcome.Effects)
	assert.Equal(t, "2", outcome.Case.RecipientID)
	assert.Empty(t, f.repo.cases)
	assert.Equal(t, audit.ActionReprimandDelete, f.repo.entries[len(f.repo.entries)-1].Action)

	_, err = f.service.Delete(ctx, moderator, created.Case.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNotice(t *testing.T) {
	deadlineAt := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	c := Case{ID: 12, IssuerID: "1", RecipientID: "2", PunishmentType: "warning", Reason: "1.2", Task: "essay", Days: 3, Deadline: &deadlineAt}

	n := c.Notice("dismissal")
	assert.Equal(t, "Attention, <@2>!", n.Content)
	assert.Equal(t, colorReprimand, n.Color)
	assert.Equal(t, "Reprimand ID: 12", n.Footer)
	assert.Equal(t, "not provided", n.Fields[4].Value)
	assert.Equal(t, "3 days", n.Fields[len(n.Fields)-1].Value)

	c.PunishmentType, c.Days = "dismissal", 0
	n = c.Notice("dismissal")
	assert.Equal(t, colorTerminal, n.Color)
	assert.Len(t, n.Fields, 5)
}

func TestNoticeFieldsFitEmbedLimits(t *testing.T) {
	c := Case{
		ID:             5,
		IssuerID:       "1",
		RecipientID:    "2",
		PunishmentType: "warning",
		Reason:         "1.3",
		Task:           "",
		Evidence:       strings.Repeat("e", 4000),
	}

	n := c.Notice("dismissal")
	for _, f := range n.Fields {
		count := utf8.RuneCountInString(f.Value)
		assert.Truef(t, count >= 1 && count <= maxFieldValue, "field %q has %d chars", f.Name, count)
	}
	assert.Equal(t, deadline.NoTask, n.Fields[3].Value)
	assert.True(t, strings.HasSuffix(n.Fields[4].Value, "…"))

	c.Evidence = strings.Repeat("ё", maxFieldValue)
	assert.Equal(t, c.Evidence, c.Notice("dismissal").Fields[4].Value)
}

func TestNoticeNormalizesTerminal(t *testing.T) {
	c := Case{ID: 6, IssuerID: "1", RecipientID: "2", PunishmentType: "dismissal", Reason: "4.1"}
	assert.Equal(t, colorTerminal, c.Notice("  dismissal\n").Color)
}
