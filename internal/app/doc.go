// Package app provides the application service layer.
//
// Orchestrates use cases: vote casting (rate limit, ledger, metrics), feed
// listing with cursor pagination, post/comment creation, and accounts. Sits
// between HTTP handlers and domain repositories. Depends on interfaces, not
// concrete implementations.
package app
