package vote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/zd8899/isitjustme/internal/domain"
)

// Ledger owns the set of votes and enforces the unique-vote invariant.
type Ledger struct {
	store Store
	clock clockwork.Clock
}

func NewLedger(store Store, clock clockwork.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// Result is the outcome of a cast plus the tally after the mutation.
// KarmaDelta is the score change credited to the target's author, zero for
// anonymous authors.
type Result struct {
	Outcome    domain.VoteOutcome
	Tally      domain.Tally
	KarmaDelta int
}

// Cast applies one vote transition for (target, voter):
//
//	no live vote            -> insert (OutcomeCast)
//	live vote, other value  -> flip in place (OutcomeChanged)
//	live vote, same value   -> delete, back to neutral (OutcomeRetracted)
//
// It then recomputes the tally, overwrites the target's counters, and
// applies the score delta to the author's karma. The voter identity must be
// resolved by the caller before invoking Cast; the ledger never consults
// ambient request state.
//
// Validation failures are rejected before any storage access, and an
// unknown target aborts before any mutation.
func (l *Ledger) Cast(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (Result, error) {
	if !value.Valid() {
		return Result{}, domain.ErrInvalidVoteValue
	}
	if voter.IsZero() {
		return Result{}, domain.ErrInvalidVoterIdentity
	}
	if target.IsZero() {
		return Result{}, domain.ErrTargetNotFound
	}

	var res Result
	err := l.store.Atomically(ctx, target, func(s Store) error {
		state, err := s.GetTarget(ctx, target)
		if err != nil {
			return err
		}

		existing, err := s.FindVote(ctx, target, voter)
		if err != nil {
			return fmt.Errorf("failed to look up vote: %w", err)
		}

		switch {
		case existing == nil:
			now := l.clock.Now()
			v := &domain.Vote{
				ID:        uuid.New(),
				Target:    target,
				Voter:     voter,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.InsertVote(ctx, v); err != nil {
				return fmt.Errorf("failed to insert vote: %w", err)
			}
			res.Outcome = domain.OutcomeCast

		case existing.Value == value:
			if err := s.DeleteVote(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to retract vote: %w", err)
			}
			res.Outcome = domain.OutcomeRetracted

		default:
			if err := s.UpdateVoteValue(ctx, existing.ID, value); err != nil {
				return fmt.Errorf("failed to change vote: %w", err)
			}
			res.Outcome = domain.OutcomeChanged
		}

		tally, err := s.CountVotes(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to recompute tally: %w", err)
		}
		if err := s.SetTargetCounters(ctx, target, tally); err != nil {
			return fmt.Errorf("failed to write counters: %w", err)
		}

		// Counters equal the recomputed tally before every mutation, and we
		// hold the target lock, so the difference is exactly this
		// mutation's contribution.
		if state.AuthorID != uuid.Nil {
			if delta := tally.Score - state.Tally.Score; delta != 0 {
				if err := s.AdjustAuthorKarma(ctx, state.AuthorID, delta); err != nil {
					return fmt.Errorf("failed to adjust karma: %w", err)
				}
				res.KarmaDelta = delta
			}
		}

		res.Tally = tally
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
