package vote

import (
	"context"

	"github.com/google/uuid"

	"github.com/zd8899/isitjustme/internal/domain"
)

// Store abstracts vote storage. The in-memory implementation backs the unit
// tests and single-instance mode; the Postgres implementation runs each
// Atomically block in a transaction holding a row lock on the target.
//
// All methods except Atomically are only called from inside an Atomically
// block for the same target.
type Store interface {
	// Atomically runs fn so that the enclosed sequence is linearizable per
	// target: two concurrent blocks for the same target serialize, blocks
	// for different targets may proceed in parallel. A block that returns
	// an error leaves no partial state behind.
	Atomically(ctx context.Context, target domain.TargetRef, fn func(Store) error) error

	// GetTarget returns the target's author and current counters, or
	// domain.ErrTargetNotFound.
	GetTarget(ctx context.Context, target domain.TargetRef) (*domain.TargetState, error)

	// FindVote returns the live vote for (target, voter), or nil when the
	// voter is neutral on this target.
	FindVote(ctx context.Context, target domain.TargetRef, voter domain.VoterID) (*domain.Vote, error)

	InsertVote(ctx context.Context, v *domain.Vote) error
	UpdateVoteValue(ctx context.Context, voteID uuid.UUID, value domain.VoteValue) error
	DeleteVote(ctx context.Context, voteID uuid.UUID) error

	// CountVotes recomputes the tally from live votes; the ledger treats
	// this as the source of truth.
	CountVotes(ctx context.Context, target domain.TargetRef) (domain.Tally, error)

	SetTargetCounters(ctx context.Context, target domain.TargetRef, tally domain.Tally) error

	// AdjustAuthorKarma applies delta as an atomic increment so concurrent
	// mutations of different targets by the same author never lose updates.
	AdjustAuthorKarma(ctx context.Context, authorID uuid.UUID, delta int) error
}
