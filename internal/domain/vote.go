package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoteValue is the direction of a vote. There is no neutral value; the
// absence of a vote is the neutral state.
type VoteValue int

const (
	Upvote   VoteValue = 1
	Downvote VoteValue = -1
)

func (v VoteValue) Valid() bool {
	return v == Upvote || v == Downvote
}

// TargetKind discriminates the TargetRef sum type.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// TargetRef identifies a votable entity, either a post or a comment.
// The zero value references nothing; construct via PostRef or CommentRef so
// a reference can never carry both variants.
type TargetRef struct {
	kind TargetKind
	id   uuid.UUID
}

func PostRef(postID uuid.UUID) TargetRef {
	return TargetRef{kind: TargetPost, id: postID}
}

func CommentRef(commentID uuid.UUID) TargetRef {
	return TargetRef{kind: TargetComment, id: commentID}
}

// NewTargetRef builds a TargetRef from its wire representation.
func NewTargetRef(kind TargetKind, id uuid.UUID) (TargetRef, error) {
	if !kind.Valid() || id == uuid.Nil {
		return TargetRef{}, ErrTargetNotFound
	}
	return TargetRef{kind: kind, id: id}, nil
}

func (t TargetRef) Kind() TargetKind { return t.kind }
func (t TargetRef) ID() uuid.UUID    { return t.id }

func (t TargetRef) IsZero() bool {
	return t.kind == "" || t.id == uuid.Nil
}

func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%s", t.kind, t.id)
}

// VoterKind discriminates the VoterID sum type.
type VoterKind string

const (
	VoterRegistered VoterKind = "registered"
	VoterAnonymous  VoterKind = "anonymous"
)

// VoterID identifies who cast a vote: a registered user or an anonymous
// visitor. Exactly one variant is populated; the constructors make a "both
// populated" state unrepresentable. The zero value is invalid and rejected
// by the ledger.
type VoterID struct {
	kind VoterKind
	id   uuid.UUID
}

func RegisteredVoter(userID uuid.UUID) VoterID {
	return VoterID{kind: VoterRegistered, id: userID}
}

func AnonymousVoter(anonID uuid.UUID) VoterID {
	return VoterID{kind: VoterAnonymous, id: anonID}
}

func (v VoterID) Kind() VoterKind { return v.kind }
func (v VoterID) ID() uuid.UUID   { return v.id }

func (v VoterID) IsZero() bool {
	return (v.kind != VoterRegistered && v.kind != VoterAnonymous) || v.id == uuid.Nil
}

func (v VoterID) String() string {
	return fmt.Sprintf("%s:%s", v.kind, v.id)
}

// Vote is a single live vote. At most one live vote exists per
// (Target, Voter) pair at all times.
type Vote struct {
	ID        uuid.UUID
	Target    TargetRef
	Voter     VoterID
	Value     VoteValue
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tally is the vote aggregate for a target, derived from live votes.
// Score is always Upvotes - Downvotes.
type Tally struct {
	Upvotes   int
	Downvotes int
	Score     int
}

// TargetState is the ledger's view of a target: who authored it (uuid.Nil
// for anonymous authors) and its current denormalized counters.
type TargetState struct {
	Ref       TargetRef
	AuthorID  uuid.UUID
	Tally     Tally
	CreatedAt time.Time
}

// VoteOutcome reports which of the three vote transitions applied.
type VoteOutcome string

const (
	// OutcomeCast means no live vote existed and one was created.
	OutcomeCast VoteOutcome = "cast"
	// OutcomeChanged means the existing vote was flipped to the new value.
	OutcomeChanged VoteOutcome = "changed"
	// OutcomeRetracted means the same value was re-submitted and the vote
	// was deleted, returning the voter to neutral.
	OutcomeRetracted VoteOutcome = "retracted"
)
