package app

import (
	"context"
	"fmt"

	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/errors"
	"github.com/zd8899/isitjustme/internal/ranking"
)

// FeedRow is one feed entry: the post plus the hot key it was ordered by.
// The key comes from the repository so the cursor always matches the value
// the ordering query actually used.
type FeedRow struct {
	Post   domain.Post
	HotKey float64
}

// FeedRepository lists posts in a feed ordering, strictly after the given
// sort key.
type FeedRepository interface {
	List(ctx context.Context, order ranking.Order, after *ranking.SortKey, limit int) ([]FeedRow, error)
}

// FeedPage is one page of a feed plus the cursor for the next one.
// NextCursor is empty on the last page.
type FeedPage struct {
	Order      ranking.Order
	Items      []FeedRow
	NextCursor string
}

// Feed lists one page of the hot or new feed. cursorToken is the opaque
// token from the previous page, or empty for the first page. limit <= 0
// selects the configured default.
func (s *Service) Feed(ctx context.Context, order ranking.Order, cursorToken string, limit int) (*FeedPage, error) {
	if !order.Valid() {
		return nil, errors.ValidationError(fmt.Sprintf("unknown feed ordering %q", order))
	}

	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	var after *ranking.SortKey
	if cursorToken != "" {
		cursor, err := ranking.DecodeCursor(cursorToken, order)
		if err != nil {
			return nil, errors.ValidationError("invalid feed cursor").WithContext("cause", err.Error())
		}
		after = &cursor.Key
	}

	rows, err := s.feed.List(ctx, order, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s feed: %w", order, err)
	}

	page := &FeedPage{Order: order, Items: rows}
	if len(rows) == limit {
		last := rows[len(rows)-1]
		key := ranking.SortKey{Hot: last.HotKey, CreatedAt: last.Post.CreatedAt, ID: last.Post.ID}
		page.NextCursor = ranking.Cursor{Order: order, Key: key}.Encode()
	}
	return page, nil
}
