package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zd8899/isitjustme/internal/app"
	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/ranking"
)

func TestFeed_DefaultsToHot(t *testing.T) {
	var gotOrder ranking.Order
	var gotLimit int
	mock := &mockAppService{
		feedFn: func(_ context.Context, order ranking.Order, _ string, limit int) (*app.FeedPage, error) {
			gotOrder, gotLimit = order, limit
			return &app.FeedPage{Order: order}, nil
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/feed", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ranking.OrderHot, gotOrder)
	assert.Zero(t, gotLimit, "missing limit is passed through for the service default")
}

func TestFeed_PassesCursorAndLimit(t *testing.T) {
	var gotCursor string
	var gotLimit int
	mock := &mockAppService{
		feedFn: func(_ context.Context, _ ranking.Order, cursor string, limit int) (*app.FeedPage, error) {
			gotCursor, gotLimit = cursor, limit
			return &app.FeedPage{Order: ranking.OrderNew}, nil
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/feed?order=new&cursor=abc&limit=10", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", gotCursor)
	assert.Equal(t, 10, gotLimit)
}

func TestFeed_RejectsNonNumericLimit(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/feed?limit=lots", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeed_SerializesItemsAndCursor(t *testing.T) {
	post := domain.Post{
		ID:        uuid.New(),
		Title:     "hello",
		BodyHTML:  "<p>hi</p>",
		Upvotes:   2,
		Downvotes: 1,
		Score:     1,
		CreatedAt: time.Now().UTC(),
	}
	mock := &mockAppService{
		feedFn: func(context.Context, ranking.Order, string, int) (*app.FeedPage, error) {
			return &app.FeedPage{
				Order:      ranking.OrderHot,
				Items:      []app.FeedRow{{Post: post, HotKey: 12.5}},
				NextCursor: "next-token",
			}, nil
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/feed", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hot", resp.Order)
	assert.Equal(t, "next-token", resp.NextCursor)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, post.ID, resp.Items[0].ID)
	assert.Equal(t, 1, resp.Items[0].Score)
	assert.Empty(t, resp.Items[0].AuthorID, "anonymous author is omitted")
}

func TestCreatePost_AnonymousAllowed(t *testing.T) {
	var gotAuthor uuid.UUID
	mock := &mockAppService{
		createPostFn: func(_ context.Context, authorID uuid.UUID, title, body string) (*domain.Post, error) {
			gotAuthor = authorID
			return &domain.Post{ID: uuid.New(), Title: title, BodyHTML: "<p>" + body + "</p>"}, nil
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodPost, "/api/posts",
		`{"title":"is it just me","body":"or..."}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uuid.Nil, gotAuthor)
}

func TestCreatePost_UsesSessionAuthor(t *testing.T) {
	userID := uuid.New()
	var gotAuthor uuid.UUID
	mock := &mockAppService{
		createPostFn: func(_ context.Context, authorID uuid.UUID, title, _ string) (*domain.Post, error) {
			gotAuthor = authorID
			return &domain.Post{ID: uuid.New(), AuthorID: authorID, Title: title}, nil
		},
	}
	srv := newTestServer(t, mock)

	req := jsonRequest(t, http.MethodPost, "/api/posts", `{"title":"mine","body":"b"}`)
	req.AddCookie(sessionCookie(t, srv, userID))
	rec := doRequest(t, srv, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, gotAuthor)
}

func TestCreatePost_InvalidContent(t *testing.T) {
	mock := &mockAppService{
		createPostFn: func(context.Context, uuid.UUID, string, string) (*domain.Post, error) {
			return nil, domain.ErrInvalidPostContent
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodPost, "/api/posts", `{"title":"","body":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPost_NotFound(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/posts/"+uuid.NewString(), ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPost_WithComments(t *testing.T) {
	postID := uuid.New()
	mock := &mockAppService{
		getPostFn: func(_ context.Context, id uuid.UUID) (*domain.Post, []*domain.Comment, error) {
			require.Equal(t, postID, id)
			return &domain.Post{ID: postID, Title: "t"},
				[]*domain.Comment{{ID: uuid.New(), PostID: postID, Body: "me too"}}, nil
		},
	}
	srv := newTestServer(t, mock)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/api/posts/"+postID.String(), ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp postWithCommentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, postID, resp.Post.ID)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "me too", resp.Comments[0].Body)
}

func TestCreateComment(t *testing.T) {
	postID := uuid.New()
	mock := &mockAppService{
		createCommentFn: func(_ context.Context, gotPost, _ uuid.UUID, body string) (*domain.Comment, error) {
			require.Equal(t, postID, gotPost)
			return &domain.Comment{ID: uuid.New(), PostID: gotPost, Body: body}, nil
		},
	}
	srv := newTestServer(t, mock)

	path := fmt.Sprintf("/api/posts/%s/comments", postID)
	rec := doRequest(t, srv, jsonRequest(t, http.MethodPost, path, `{"body":"same here"}`))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp commentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, postID, resp.PostID)
	assert.Equal(t, "same here", resp.Body)
}

func TestCreateComment_MissingPost(t *testing.T) {
	mock := &mockAppService{
		createCommentFn: func(context.Context, uuid.UUID, uuid.UUID, string) (*domain.Comment, error) {
			return nil, domain.ErrPostNotFound
		},
	}
	srv := newTestServer(t, mock)

	path := fmt.Sprintf("/api/posts/%s/comments", uuid.New())
	rec := doRequest(t, srv, jsonRequest(t, http.MethodPost, path, `{"body":"hi"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
