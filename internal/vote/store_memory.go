package vote

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zd8899/isitjustme/internal/domain"
)

type voteKey struct {
	Target domain.TargetRef
	Voter  domain.VoterID
}

type memoryTarget struct {
	AuthorID  uuid.UUID
	Tally     domain.Tally
	CreatedAt time.Time
}

// InMemoryStore is the Store used by the unit tests and by single-instance
// deployments without Postgres. Per-target mutexes give Atomically its
// serialization guarantee; a store-wide mutex guards the maps themselves,
// which makes every individual operation (karma increments included)
// atomic.
type InMemoryStore struct {
	mu      sync.Mutex
	locks   map[domain.TargetRef]*sync.Mutex
	votes   map[uuid.UUID]*domain.Vote
	byKey   map[voteKey]uuid.UUID
	targets map[domain.TargetRef]*memoryTarget
	karma   map[uuid.UUID]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		locks:   make(map[domain.TargetRef]*sync.Mutex),
		votes:   make(map[uuid.UUID]*domain.Vote),
		byKey:   make(map[voteKey]uuid.UUID),
		targets: make(map[domain.TargetRef]*memoryTarget),
		karma:   make(map[uuid.UUID]int64),
	}
}

// SeedTarget registers a votable target. authorID may be uuid.Nil for
// anonymous authorship.
func (s *InMemoryStore) SeedTarget(ref domain.TargetRef, authorID uuid.UUID, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[ref] = &memoryTarget{AuthorID: authorID, CreatedAt: createdAt}
}

func (s *InMemoryStore) targetLock(target domain.TargetRef) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[target]
	if !ok {
		l = &sync.Mutex{}
		s.locks[target] = l
	}
	return l
}

func (s *InMemoryStore) Atomically(_ context.Context, target domain.TargetRef, fn func(Store) error) error {
	l := s.targetLock(target)
	l.Lock()
	defer l.Unlock()
	return fn(s)
}

func (s *InMemoryStore) GetTarget(_ context.Context, target domain.TargetRef) (*domain.TargetState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.targets[target]
	if !ok {
		return nil, domain.ErrTargetNotFound
	}
	return &domain.TargetState{
		Ref:       target,
		AuthorID:  t.AuthorID,
		Tally:     t.Tally,
		CreatedAt: t.CreatedAt,
	}, nil
}

func (s *InMemoryStore) FindVote(_ context.Context, target domain.TargetRef, voter domain.VoterID) (*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[voteKey{Target: target, Voter: voter}]
	if !ok {
		return nil, nil
	}
	v := *s.votes[id]
	return &v, nil
}

func (s *InMemoryStore) InsertVote(_ context.Context, v *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.votes[v.ID] = &cp
	s.byKey[voteKey{Target: v.Target, Voter: v.Voter}] = v.ID
	return nil
}

func (s *InMemoryStore) UpdateVoteValue(_ context.Context, voteID uuid.UUID, value domain.VoteValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.votes[voteID]; ok {
		v.Value = value
	}
	return nil
}

func (s *InMemoryStore) DeleteVote(_ context.Context, voteID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.votes[voteID]; ok {
		delete(s.byKey, voteKey{Target: v.Target, Voter: v.Voter})
		delete(s.votes, voteID)
	}
	return nil
}

func (s *InMemoryStore) CountVotes(_ context.Context, target domain.TargetRef) (domain.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countVotesLocked(target), nil
}

func (s *InMemoryStore) countVotesLocked(target domain.TargetRef) domain.Tally {
	var tally domain.Tally
	for _, v := range s.votes {
		if v.Target != target {
			continue
		}
		switch v.Value {
		case domain.Upvote:
			tally.Upvotes++
		case domain.Downvote:
			tally.Downvotes++
		}
	}
	tally.Score = tally.Upvotes - tally.Downvotes
	return tally
}

func (s *InMemoryStore) SetTargetCounters(_ context.Context, target domain.TargetRef, tally domain.Tally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.targets[target]; ok {
		t.Tally = tally
	}
	return nil
}

func (s *InMemoryStore) AdjustAuthorKarma(_ context.Context, authorID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.karma[authorID] += int64(delta)
	return nil
}

// Karma returns the incrementally maintained karma for an author.
func (s *InMemoryStore) Karma(authorID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.karma[authorID]
}

// RecountKarma recomputes karma for an author from scratch by summing the
// stored counters of every target they authored. Used by tests to check
// that the incremental path never drifts.
func (s *InMemoryStore) RecountKarma(authorID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.targets {
		if t.AuthorID == authorID {
			sum += int64(t.Tally.Score)
		}
	}
	return sum
}

// LiveVotes returns copies of all live votes for a target.
func (s *InMemoryStore) LiveVotes(target domain.TargetRef) []domain.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Vote
	for _, v := range s.votes {
		if v.Target == target {
			out = append(out, *v)
		}
	}
	return out
}
