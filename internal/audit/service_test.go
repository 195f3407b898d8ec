package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTimelineRepo struct {
	rows       []TimelineRow
	lastActor  string
	lastAction string
	lastOffset int
	lastLimit  int
}

func (s *stubTimelineRepo) Window(ctx context.Context, actor, action string, offset, limit int) ([]TimelineRow, error) {
	s.lastActor, s.lastAction, s.lastOffset, s.lastLimit = actor, action, offset, limit
	end := offset + limit
	if offset > len(s.rows) {
		return nil, nil
	}
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func seedRows(n int) []TimelineRow {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	rows := make([]TimelineRow, n)
	for i := range rows {
		rows[i] = TimelineRow{
			ID:        int64(n - i),
			ActorID:   "1001",
			ActorName: "moderator",
			Action:    ActionReprimandCreate,
			At:        base.Add(-time.Duration(i) * time.Minute),
			Details:   map[string]any{"reprimandId": fmt.Sprint(n - i)},
		}
	}
	return rows
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: seedRows(5)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 2, Action: ActionReprimandCreate})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.lastOffset)
	assert.Equal(t, 3, repo.lastLimit, "one extra row is fetched to detect a next page")
	assert.Equal(t, ActionReprimandCreate, repo.lastAction)
	require.Len(t, result.Rows, 2)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 1, result.Paging.PrevPage)
	assert.Equal(t, 3, result.Paging.NextPage)
}

func TestServiceTimelineDefaultsToLatestHundred(t *testing.T) {
	repo := &stubTimelineRepo{rows: seedRows(150)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, 0, repo.lastOffset)
	assert.Len(t, result.Rows, 100)
	assert.Equal(t, 1, result.Paging.Page)
	assert.True(t, result.Paging.HasNext)
	assert.Zero(t, result.Paging.PrevPage)
}

func TestServiceTimelineEmptyIsNotNil(t *testing.T) {
	svc := NewService(&stubTimelineRepo{})

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	assert.NotNil(t, result.Rows)
	assert.False(t, result.Paging.HasNext)
}

func TestServiceTimelineWithoutRepository(t *testing.T) {
	_, err := NewService(nil).Timeline(context.Background(), TimelineFilters{})
	assert.Error(t, err)
}
