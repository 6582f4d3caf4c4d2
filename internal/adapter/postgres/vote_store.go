package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/platform/retry"
	"github.com/zd8899/isitjustme/internal/vote"
)

const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// VoteStore implements vote.Store on Postgres. Atomically runs its block in
// a transaction that holds a FOR UPDATE lock on the target row, so blocks
// for the same target serialize and blocks for different targets do not.
type VoteStore struct {
	voteQueries
	pool   *pgxpool.Pool
	policy retry.Policy
}

func NewVoteStore(pool *pgxpool.Pool) *VoteStore {
	return &VoteStore{
		voteQueries: voteQueries{db: pool},
		pool:        pool,
		policy: retry.Policy{
			MaxAttempts:    3,
			InitialBackoff: 10 * time.Millisecond,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("retrying vote transaction", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

func (s *VoteStore) Atomically(ctx context.Context, target domain.TargetRef, fn func(vote.Store) error) error {
	err := retry.Do(ctx, s.policy, isTransientTxError, func() error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if err := lockTarget(ctx, tx, target); err != nil {
				return err
			}
			return fn(&txVoteStore{voteQueries{db: tx}})
		})
	})
	if err != nil && isTransientTxError(err) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
	}
	return err
}

// txVoteStore is the store handed to Atomically blocks. The transaction is
// already open, so a nested Atomically just runs the block.
type txVoteStore struct {
	voteQueries
}

func (s *txVoteStore) Atomically(_ context.Context, _ domain.TargetRef, fn func(vote.Store) error) error {
	return fn(s)
}

func lockTarget(ctx context.Context, tx pgx.Tx, target domain.TargetRef) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, targetTable(target.Kind()))

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, target.ID()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTargetNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock target %s: %w", target, err)
	}
	return nil
}

func isTransientTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// Unique violations on the vote key mean a concurrent first cast won the
	// race; retrying re-reads the winner's vote and applies the toggle.
	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected || pgErr.Code == uniqueViolation
}

func targetTable(kind domain.TargetKind) string {
	if kind == domain.TargetComment {
		return "comments"
	}
	return "posts"
}

func voterColumn(kind domain.VoterKind) string {
	if kind == domain.VoterAnonymous {
		return "anon_id"
	}
	return "user_id"
}

// voteQueries holds the vote.Store methods shared between the pool-backed
// store and the per-transaction store.
type voteQueries struct {
	db querier
}

func (q voteQueries) GetTarget(ctx context.Context, target domain.TargetRef) (*domain.TargetState, error) {
	query := fmt.Sprintf(`SELECT author_id, upvotes, downvotes, score, created_at FROM %s WHERE id = $1`,
		targetTable(target.Kind()))

	state := domain.TargetState{Ref: target}
	var author *uuid.UUID
	err := q.db.QueryRow(ctx, query, target.ID()).
		Scan(&author, &state.Tally.Upvotes, &state.Tally.Downvotes, &state.Tally.Score, &state.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target %s: %w", target, err)
	}
	state.AuthorID = derefID(author)
	return &state, nil
}

func (q voteQueries) FindVote(ctx context.Context, target domain.TargetRef, voter domain.VoterID) (*domain.Vote, error) {
	query := fmt.Sprintf(`SELECT id, value, created_at, updated_at FROM votes
	                      WHERE target_kind = $1 AND target_id = $2 AND %s = $3`,
		voterColumn(voter.Kind()))

	v := domain.Vote{Target: target, Voter: voter}
	var value int16
	err := q.db.QueryRow(ctx, query, target.Kind(), target.ID(), voter.ID()).
		Scan(&v.ID, &value, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	v.Value = domain.VoteValue(value)
	return &v, nil
}

func (q voteQueries) InsertVote(ctx context.Context, v *domain.Vote) error {
	query := fmt.Sprintf(`INSERT INTO votes (id, target_kind, target_id, %s, value, created_at, updated_at)
	                      VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		voterColumn(v.Voter.Kind()))

	_, err := q.db.Exec(ctx, query, v.ID, v.Target.Kind(), v.Target.ID(), v.Voter.ID(),
		int16(v.Value), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (q voteQueries) UpdateVoteValue(ctx context.Context, voteID uuid.UUID, value domain.VoteValue) error {
	tag, err := q.db.Exec(ctx, `UPDATE votes SET value = $2, updated_at = now() WHERE id = $1`, voteID, int16(value))
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vote %s disappeared during update", voteID)
	}
	return nil
}

func (q voteQueries) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM votes WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vote %s disappeared during delete", voteID)
	}
	return nil
}

func (q voteQueries) CountVotes(ctx context.Context, target domain.TargetRef) (domain.Tally, error) {
	query := `SELECT COUNT(*) FILTER (WHERE value = 1), COUNT(*) FILTER (WHERE value = -1)
	          FROM votes WHERE target_kind = $1 AND target_id = $2`

	var tally domain.Tally
	err := q.db.QueryRow(ctx, query, target.Kind(), target.ID()).Scan(&tally.Upvotes, &tally.Downvotes)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	tally.Score = tally.Upvotes - tally.Downvotes
	return tally, nil
}

func (q voteQueries) SetTargetCounters(ctx context.Context, target domain.TargetRef, tally domain.Tally) error {
	query := fmt.Sprintf(`UPDATE %s SET upvotes = $2, downvotes = $3, score = $4, updated_at = now() WHERE id = $1`,
		targetTable(target.Kind()))

	tag, err := q.db.Exec(ctx, query, target.ID(), tally.Upvotes, tally.Downvotes, tally.Score)
	if err != nil {
		return fmt.Errorf("failed to write counters for %s: %w", target, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTargetNotFound
	}
	return nil
}

func (q voteQueries) AdjustAuthorKarma(ctx context.Context, authorID uuid.UUID, delta int) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET karma = karma + $2, updated_at = now() WHERE id = $1`, authorID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust karma for %s: %w", authorID, err)
	}
	return nil
}
