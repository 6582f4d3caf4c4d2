package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zd8899/isitjustme/internal/domain"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeUnauthorized, http.StatusUnauthorized},
		{TypeNotFound, http.StatusNotFound},
		{TypeConflict, http.StatusConflict},
		{TypeRateLimited, http.StatusTooManyRequests},
		{TypeInternal, http.StatusInternalServerError},
		{ErrorType("bogus"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			e := &Error{Type: tt.errType, Message: "x"}
			assert.Equal(t, tt.want, e.HTTPStatus())
		})
	}
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"invalid vote value", domain.ErrInvalidVoteValue, TypeValidation},
		{"invalid voter identity", domain.ErrInvalidVoterIdentity, TypeValidation},
		{"target not found", domain.ErrTargetNotFound, TypeNotFound},
		{"post not found", domain.ErrPostNotFound, TypeNotFound},
		{"concurrent modification", domain.ErrConcurrentModification, TypeConflict},
		{"username taken", domain.ErrUsernameTaken, TypeConflict},
		{"bad credentials", domain.ErrInvalidCredentials, TypeUnauthorized},
		{"rate limited", domain.ErrRateLimited, TypeRateLimited},
		{"wrapped sentinel", fmt.Errorf("casting vote: %w", domain.ErrTargetNotFound), TypeNotFound},
		{"unknown", errors.New("boom"), TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured := FromDomain(tt.err)
			require.NotNil(t, structured)
			assert.Equal(t, tt.wantType, structured.Type)
			assert.ErrorIs(t, structured, tt.err)
		})
	}
}

func TestFromDomain_Nil(t *testing.T) {
	assert.Nil(t, FromDomain(nil))
}

func TestAsStructuredError_PassesThroughExisting(t *testing.T) {
	original := NotFoundError("gone")
	assert.Same(t, original, AsStructuredError(original))
	assert.Same(t, original, AsStructuredError(fmt.Errorf("wrapped: %w", original)))
}

func TestErrorString(t *testing.T) {
	plain := ValidationError("bad input")
	assert.Equal(t, "validation: bad input", plain.Error())

	withCause := InternalError("query failed", errors.New("connection reset"))
	assert.Equal(t, "internal: query failed: connection reset", withCause.Error())
}

func TestWithContext(t *testing.T) {
	e := ValidationError("bad input").WithContext("field", "value").WithContext("limit", 10)
	assert.Equal(t, "value", e.Context["field"])
	assert.Equal(t, 10, e.Context["limit"])

	resp := e.ToResponse()
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "bad input", resp.Error)
	assert.Len(t, resp.Context, 2)
}
