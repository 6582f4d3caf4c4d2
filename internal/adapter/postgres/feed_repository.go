package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zd8899/isitjustme/internal/app"
	"github.com/zd8899/isitjustme/internal/ranking"
)

// hotKeyExpr mirrors ranking.HotScore so cursor keys compare against the
// exact values the query ordered by. Both sides evaluate in float8.
const hotKeyExpr = `(sign(score) * log(greatest(abs(score), 1)))::float8
	+ extract(epoch FROM created_at - $1::timestamptz)::float8 / $2`

type FeedRepo struct {
	db querier
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{db: pool}
}

func (r *FeedRepo) List(ctx context.Context, order ranking.Order, after *ranking.SortKey, limit int) ([]app.FeedRow, error) {
	var rows pgx.Rows
	var err error
	switch order {
	case ranking.OrderHot:
		rows, err = r.listHot(ctx, after, limit)
	case ranking.OrderNew:
		rows, err = r.listNew(ctx, after, limit)
	default:
		return nil, fmt.Errorf("unknown feed ordering %q", order)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s feed: %w", order, err)
	}
	defer rows.Close()

	var feed []app.FeedRow
	for rows.Next() {
		var row app.FeedRow
		var author *uuid.UUID
		err := rows.Scan(&row.Post.ID, &author, &row.Post.Title, &row.Post.Body, &row.Post.BodyHTML,
			&row.Post.Upvotes, &row.Post.Downvotes, &row.Post.Score,
			&row.Post.CreatedAt, &row.Post.UpdatedAt, &row.HotKey)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		row.Post.AuthorID = derefID(author)
		feed = append(feed, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed rows: %w", err)
	}
	return feed, nil
}

func (r *FeedRepo) listHot(ctx context.Context, after *ranking.SortKey, limit int) (pgx.Rows, error) {
	query := `SELECT * FROM (
	              SELECT ` + postColumns + `, ` + hotKeyExpr + ` AS hot_key FROM posts
	          ) ranked`
	args := []any{ranking.Epoch, ranking.DecaySeconds}

	if after != nil {
		query += ` WHERE (hot_key, created_at, id) < ($3, $4, $5)`
		args = append(args, after.Hot, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY hot_key DESC, created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.db.Query(ctx, query, args...)
}

func (r *FeedRepo) listNew(ctx context.Context, after *ranking.SortKey, limit int) (pgx.Rows, error) {
	query := `SELECT ` + postColumns + `, 0::float8 AS hot_key FROM posts`
	var args []any

	if after != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.db.Query(ctx, query, args...)
}
