package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/zd8899/isitjustme/internal/adapter/metrics"
	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/vote"
)

const (
	minPasswordLength = 8
	maxTitleLength    = 300
	maxBodyLength     = 40000
)

// VoteCaster is the ledger surface the service needs.
type VoteCaster interface {
	Cast(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (vote.Result, error)
}

// RateLimiter gates vote casting per voter. Implementations are a
// configuration knob; nil disables limiting entirely.
type RateLimiter interface {
	Allow(ctx context.Context, voter domain.VoterID) (bool, error)
}

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	ledger   VoteCaster
	posts    domain.PostRepository
	comments domain.CommentRepository
	users    domain.UserRepository
	feed     FeedRepository
	limiter  RateLimiter
	votes    *metrics.VoteMetrics
	clock    clockwork.Clock

	pageSize    int
	maxPageSize int
}

// NewService creates the application layer service.
// limiter and votes may be nil when rate limiting or metrics are disabled.
func NewService(ledger VoteCaster, posts domain.PostRepository, comments domain.CommentRepository, users domain.UserRepository, feed FeedRepository, limiter RateLimiter, votes *metrics.VoteMetrics, clock clockwork.Clock, pageSize, maxPageSize int) *Service {
	return &Service{
		ledger:      ledger,
		posts:       posts,
		comments:    comments,
		users:       users,
		feed:        feed,
		limiter:     limiter,
		votes:       votes,
		clock:       clock,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

// CastVote runs the write path: rate limit check, ledger cast, metrics.
// The voter identity must already be resolved by the transport layer.
func (s *Service) CastVote(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (vote.Result, error) {
	if s.limiter != nil && !voter.IsZero() {
		allowed, err := s.limiter.Allow(ctx, voter)
		if err != nil {
			// The limiter is an availability knob, not a correctness
			// concern: fail open when it is unreachable.
			slog.WarnContext(ctx, "vote rate limiter unavailable, allowing vote", "error", err)
		} else if !allowed {
			if s.votes != nil {
				s.votes.RateLimited.Inc()
			}
			return vote.Result{}, domain.ErrRateLimited
		}
	}

	start := s.clock.Now()
	res, err := s.ledger.Cast(ctx, target, voter, value)
	if err != nil {
		return vote.Result{}, err
	}

	if s.votes != nil {
		s.votes.CastDuration.Observe(s.clock.Since(start).Seconds())
		s.votes.Outcomes.WithLabelValues(string(res.Outcome)).Inc()
		if res.Outcome != domain.OutcomeRetracted {
			s.votes.VotesByValue.WithLabelValues(strconv.Itoa(int(value))).Inc()
		}
		if res.KarmaDelta != 0 {
			s.votes.KarmaAdjustment.Inc()
		}
	}
	return res, nil
}

// CreatePost creates a post. authorID may be uuid.Nil for anonymous
// submissions.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, title, body string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLength {
		return nil, domain.ErrInvalidPostContent
	}
	if len(body) > maxBodyLength {
		return nil, domain.ErrInvalidPostContent
	}

	rendered, err := renderPostBody(body)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		BodyHTML:  rendered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetPost returns a post together with its comments, oldest first.
func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (*domain.Post, []*domain.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return post, comments, nil
}

// CreateComment creates a comment under an existing post.
func (s *Service) CreateComment(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.Comment, error) {
	body = sanitizeComment(strings.TrimSpace(body))
	if body == "" || len(body) > maxBodyLength {
		return nil, domain.ErrInvalidCommentContent
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 40 {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.Create(ctx, username, string(hash))
}

// Login verifies credentials and returns the user. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
