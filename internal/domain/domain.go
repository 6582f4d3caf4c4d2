package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Karma        int64     `db:"karma"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Post is a top-level submission. AuthorID is uuid.Nil for anonymous
// submissions; anonymous authorship never accrues karma.
// Upvotes, Downvotes and Score are denormalized counters owned by the vote
// ledger and must always equal the tally recomputed from live votes.
type Post struct {
	ID        uuid.UUID `db:"id"`
	AuthorID  uuid.UUID `db:"author_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	BodyHTML  string    `db:"body_html"`
	Upvotes   int       `db:"upvotes"`
	Downvotes int       `db:"downvotes"`
	Score     int       `db:"score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Comment carries the same ledger-owned counters as Post.
type Comment struct {
	ID        uuid.UUID `db:"id"`
	PostID    uuid.UUID `db:"post_id"`
	AuthorID  uuid.UUID `db:"author_id"`
	Body      string    `db:"body"`
	Upvotes   int       `db:"upvotes"`
	Downvotes int       `db:"downvotes"`
	Score     int       `db:"score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// --- Repository interfaces ---

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, postID uuid.UUID) (*Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, commentID uuid.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
}
