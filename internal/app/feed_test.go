package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zd8899/isitjustme/internal/domain"
	apperrors "github.com/zd8899/isitjustme/internal/errors"
	"github.com/zd8899/isitjustme/internal/ranking"
)

func makeFeedRows(t *testing.T, n int) []FeedRow {
	t.Helper()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]FeedRow, n)
	for i := range rows {
		created := base.Add(-time.Duration(i) * time.Hour)
		post := domain.Post{ID: uuid.New(), Title: fmt.Sprintf("post %d", i), CreatedAt: created}
		rows[i] = FeedRow{Post: post, HotKey: ranking.HotScore(post.Score, created)}
	}
	return rows
}

func TestFeed_RejectsUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Feed(context.Background(), ranking.Order("best"), "", 10)
	require.Error(t, err)

	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
}

func TestFeed_RejectsMalformedCursor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Feed(context.Background(), ranking.OrderHot, "not a cursor", 10)
	require.Error(t, err)

	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
}

func TestFeed_RejectsCursorFromOtherOrdering(t *testing.T) {
	svc, _ := newTestService(t)

	token := ranking.Cursor{
		Order: ranking.OrderNew,
		Key:   ranking.NewKey(time.Now(), uuid.New()),
	}.Encode()

	_, err := svc.Feed(context.Background(), ranking.OrderHot, token, 10)
	require.Error(t, err)
}

func TestFeed_LimitClamping(t *testing.T) {
	svc, m := newTestService(t)

	var gotLimit int
	m.feed.listFn = func(_ context.Context, _ ranking.Order, _ *ranking.SortKey, limit int) ([]FeedRow, error) {
		gotLimit = limit
		return nil, nil
	}

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero selects default", 0, 25},
		{"negative selects default", -5, 25},
		{"within bounds passes through", 40, 40},
		{"over max clamps", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Feed(context.Background(), ranking.OrderHot, "", tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotLimit)
		})
	}
}

func TestFeed_FullPageEmitsCursorForLastRow(t *testing.T) {
	svc, m := newTestService(t)

	rows := makeFeedRows(t, 3)
	m.feed.listFn = func(context.Context, ranking.Order, *ranking.SortKey, int) ([]FeedRow, error) {
		return rows, nil
	}

	page, err := svc.Feed(context.Background(), ranking.OrderHot, "", 3)
	require.NoError(t, err)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := ranking.DecodeCursor(page.NextCursor, ranking.OrderHot)
	require.NoError(t, err)

	last := rows[2]
	assert.Equal(t, last.HotKey, cursor.Key.Hot)
	assert.True(t, last.Post.CreatedAt.Equal(cursor.Key.CreatedAt))
	assert.Equal(t, last.Post.ID, cursor.Key.ID)
}

func TestFeed_ShortPageHasNoCursor(t *testing.T) {
	svc, m := newTestService(t)

	m.feed.listFn = func(context.Context, ranking.Order, *ranking.SortKey, int) ([]FeedRow, error) {
		return makeFeedRows(t, 2), nil
	}

	page, err := svc.Feed(context.Background(), ranking.OrderHot, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)
}

func TestFeed_CursorResumesAfterLastKey(t *testing.T) {
	svc, m := newTestService(t)

	rows := makeFeedRows(t, 2)
	var gotAfter *ranking.SortKey
	m.feed.listFn = func(_ context.Context, _ ranking.Order, after *ranking.SortKey, _ int) ([]FeedRow, error) {
		gotAfter = after
		if after == nil {
			return rows, nil
		}
		return nil, nil
	}

	first, err := svc.Feed(context.Background(), ranking.OrderHot, "", 2)
	require.NoError(t, err)
	require.Nil(t, gotAfter)
	require.NotEmpty(t, first.NextCursor)

	_, err = svc.Feed(context.Background(), ranking.OrderHot, first.NextCursor, 2)
	require.NoError(t, err)
	require.NotNil(t, gotAfter)
	assert.Equal(t, rows[1].Post.ID, gotAfter.ID)
}
