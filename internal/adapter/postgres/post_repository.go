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

const postColumns = "id, author_id, title, body, body_html, upvotes, downvotes, score, created_at, updated_at"

type PostRepo struct {
	db querier
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{db: pool}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var author *uuid.UUID
	err := row.Scan(&p.ID, &author, &p.Title, &p.Body, &p.BodyHTML,
		&p.Upvotes, &p.Downvotes, &p.Score, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.AuthorID = derefID(author)
	return &p, nil
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `INSERT INTO posts (author_id, title, body, body_html)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, upvotes, downvotes, score, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, nullableID(post.AuthorID), post.Title, post.Body, post.BodyHTML).
		Scan(&post.ID, &post.Upvotes, &post.Downvotes, &post.Score, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return post, nil
}
