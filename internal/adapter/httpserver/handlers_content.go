package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zd8899/isitjustme/internal/domain"
	apperrors "github.com/zd8899/isitjustme/internal/errors"
	"github.com/zd8899/isitjustme/internal/ranking"
)

func (s *Server) registerContentRoutes() {
	s.echo.GET("/api/feed", s.handleFeed)
	s.echo.POST("/api/posts", s.handleCreatePost)
	s.echo.GET("/api/posts/:id", s.handleGetPost)
	s.echo.POST("/api/posts/:id/comments", s.handleCreateComment)
}

type postResponse struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Body      string    `json:"body"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(p *domain.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Title:     p.Title,
		BodyHTML:  p.BodyHTML,
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
		Score:     p.Score,
		CreatedAt: p.CreatedAt,
	}
	if p.AuthorID != uuid.Nil {
		resp.AuthorID = p.AuthorID.String()
	}
	return resp
}

func toCommentResponse(c *domain.Comment) commentResponse {
	resp := commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Body:      c.Body,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		Score:     c.Score,
		CreatedAt: c.CreatedAt,
	}
	if c.AuthorID != uuid.Nil {
		resp.AuthorID = c.AuthorID.String()
	}
	return resp
}

type feedResponse struct {
	Order      string         `json:"order"`
	Items      []postResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func (s *Server) handleFeed(c echo.Context) error {
	order := ranking.Order(c.QueryParam("order"))
	if order == "" {
		order = ranking.OrderHot
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("limit must be an integer").WithContext("limit", raw)
		}
		limit = parsed
	}

	page, err := s.app.Feed(c.Request().Context(), order, c.QueryParam("cursor"), limit)
	if err != nil {
		return err
	}

	response := feedResponse{
		Order:      string(page.Order),
		Items:      make([]postResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		response.Items = append(response.Items, toPostResponse(&page.Items[i].Post))
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	// Anonymous submissions are allowed; the author is whoever is logged in.
	authorID := s.sessionUserID(c)

	post, err := s.app.CreatePost(c.Request().Context(), authorID, req.Title, req.Body)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := c.JSON(http.StatusCreated, toPostResponse(post)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type postWithCommentsResponse struct {
	Post     postResponse      `json:"post"`
	Comments []commentResponse `json:"comments"`
}

func (s *Server) handleGetPost(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithContext("id", c.Param("id"))
	}

	post, comments, err := s.app.GetPost(c.Request().Context(), postID)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	response := postWithCommentsResponse{
		Post:     toPostResponse(post),
		Comments: make([]commentResponse, 0, len(comments)),
	}
	for _, comment := range comments {
		response.Comments = append(response.Comments, toCommentResponse(comment))
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type createCommentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleCreateComment(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithContext("id", c.Param("id"))
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	authorID := s.sessionUserID(c)

	comment, err := s.app.CreateComment(c.Request().Context(), postID, authorID, req.Body)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := c.JSON(http.StatusCreated, toCommentResponse(comment)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
