// Package domain contains the core entities and invariants of the forum:
// posts, comments, users, and the vote model (voter identity, vote targets,
// tallies). It has no dependencies on storage or transport.
package domain
