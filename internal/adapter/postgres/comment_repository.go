package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zd8899/isitjustme/internal/domain"
)

const commentColumns = "id, post_id, author_id, body, upvotes, downvotes, score, created_at, updated_at"

type CommentRepo struct {
	db querier
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{db: pool}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	var author *uuid.UUID
	err := row.Scan(&c.ID, &c.PostID, &author, &c.Body,
		&c.Upvotes, &c.Downvotes, &c.Score, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.AuthorID = derefID(author)
	return &c, nil
}

func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	query := `INSERT INTO comments (post_id, author_id, body)
	          VALUES ($1, $2, $3)
	          RETURNING id, upvotes, downvotes, score, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, comment.PostID, nullableID(comment.AuthorID), comment.Body).
		Scan(&comment.ID, &comment.Upvotes, &comment.Downvotes, &comment.Score, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRow(ctx, query, commentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return comment, nil
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, nil
}
