package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zd8899/isitjustme/internal/domain"
	apperrors "github.com/zd8899/isitjustme/internal/errors"
)

func (s *Server) registerVoteRoutes() {
	s.echo.POST("/api/votes", s.handleCastVote)
}

type castVoteRequest struct {
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	Value       int    `json:"value"`
	AnonymousID string `json:"anonymous_id,omitempty"`
}

type castVoteResponse struct {
	Outcome   string `json:"outcome"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
}

func (s *Server) handleCastVote(c echo.Context) error {
	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return apperrors.ValidationError("invalid target_id").WithContext("target_id", req.TargetID)
	}
	target, err := domain.NewTargetRef(domain.TargetKind(req.TargetType), targetID)
	if err != nil {
		return apperrors.ValidationError("invalid target_type").WithContext("target_type", req.TargetType)
	}

	value := domain.VoteValue(req.Value)
	if !value.Valid() {
		return apperrors.ValidationError("value must be 1 or -1").WithContext("value", req.Value)
	}

	voter, err := s.resolveVoter(c, req.AnonymousID)
	if err != nil {
		return err
	}

	result, err := s.app.CastVote(c.Request().Context(), target, voter, value)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	response := castVoteResponse{
		Outcome:   string(result.Outcome),
		Upvotes:   result.Tally.Upvotes,
		Downvotes: result.Tally.Downvotes,
		Score:     result.Tally.Score,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
