package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zd8899/isitjustme/internal/app"
	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/platform/config"
	"github.com/zd8899/isitjustme/internal/ranking"
	"github.com/zd8899/isitjustme/internal/vote"
)

// --- Mock implementations ---

type mockAppService struct {
	castVoteFn      func(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (vote.Result, error)
	feedFn          func(ctx context.Context, order ranking.Order, cursorToken string, limit int) (*app.FeedPage, error)
	createPostFn    func(ctx context.Context, authorID uuid.UUID, title, body string) (*domain.Post, error)
	getPostFn       func(ctx context.Context, postID uuid.UUID) (*domain.Post, []*domain.Comment, error)
	createCommentFn func(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.Comment, error)
	registerFn      func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn         func(ctx context.Context, username, password string) (*domain.User, error)
	getUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockAppService) CastVote(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (vote.Result, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, target, voter, value)
	}
	return vote.Result{Outcome: domain.OutcomeCast, Tally: domain.Tally{Upvotes: 1, Score: 1}}, nil
}

func (m *mockAppService) Feed(ctx context.Context, order ranking.Order, cursorToken string, limit int) (*app.FeedPage, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, order, cursorToken, limit)
	}
	return &app.FeedPage{Order: order}, nil
}

func (m *mockAppService) CreatePost(ctx context.Context, authorID uuid.UUID, title, body string) (*domain.Post, error) {
	if m.createPostFn != nil {
		return m.createPostFn(ctx, authorID, title, body)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) GetPost(ctx context.Context, postID uuid.UUID) (*domain.Post, []*domain.Comment, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, postID)
	}
	return nil, nil, domain.ErrPostNotFound
}

func (m *mockAppService) CreateComment(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.Comment, error) {
	if m.createCommentFn != nil {
		return m.createCommentFn(ctx, postID, authorID, body)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAppService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		Port:            "8080",
		SessionSecret:   "0123456789abcdef0123456789abcdef",
		SessionMaxAge:   time.Hour,
		FeedPageSize:    25,
		FeedMaxPageSize: 100,
	}
}

func newTestServer(t *testing.T, mock *mockAppService) *Server {
	t.Helper()
	return NewServer(testConfig(), mock, nil, nil, nil)
}

func doRequest(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	return req
}

const echoHeaderContentType = "Content-Type"

// sessionCookie logs a fake user in by round-tripping the real session
// store, so tests exercise the same cookie codec as production.
func sessionCookie(t *testing.T, srv *Server, userID uuid.UUID) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := srv.sessionStore.New(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyUserID] = userID.String()

	rec := httptest.NewRecorder()
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	for _, cookie := range cookies {
		if cookie.Name == sessionName {
			return cookie
		}
	}
	t.Fatalf("session cookie %q not set", sessionName)
	return nil
}
