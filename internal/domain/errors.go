package domain

import "errors"

var (
	ErrInvalidVoteValue     = errors.New("invalid vote value")
	ErrInvalidVoterIdentity = errors.New("invalid voter identity")
	ErrTargetNotFound       = errors.New("target not found")
	// ErrConcurrentModification is surfaced only when the storage layer
	// exhausts its internal retries; it is transient and safe to retry.
	ErrConcurrentModification = errors.New("concurrent vote modification")

	ErrPostNotFound          = errors.New("post not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrInvalidPostContent    = errors.New("invalid post content")
	ErrInvalidCommentContent = errors.New("invalid comment content")
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRateLimited           = errors.New("vote rate limit exceeded")
)
