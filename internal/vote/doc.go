// Package vote implements the vote ledger: idempotent vote casting with the
// unique-vote invariant (at most one live vote per target and voter), tally
// recomputation, denormalized counter write-back, and delta-based karma
// maintenance.
//
// The ledger is a pure pipeline over an injected Store. Atomicity and
// per-target serialization are the Store's job: the whole
// lookup-mutate-recompute sequence runs inside Store.Atomically.
package vote
