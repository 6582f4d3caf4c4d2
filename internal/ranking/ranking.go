// Package ranking produces the sort keys for feed ordering: the "hot" score
// blending vote magnitude with recency, and the plain "new" ordering. Both
// are pure functions; nothing here is persisted.
package ranking

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Order selects a feed ordering.
type Order string

const (
	OrderHot Order = "hot"
	OrderNew Order = "new"
)

func (o Order) Valid() bool {
	return o == OrderHot || o == OrderNew
}

// Epoch is the fixed reference instant ages are measured from. Anchoring on
// a constant rather than "now" makes hot scores stable as the clock
// advances, which keeps hot-feed cursors valid as new posts arrive.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecaySeconds controls how much age offsets vote magnitude: a post gains
// one order of magnitude of effective score every DecaySeconds of recency.
const DecaySeconds = 45000.0

// HotScore computes the hot ranking key for a target. It is monotonically
// increasing in score for a fixed creation time and monotonically
// increasing in creation time for a fixed score.
func HotScore(score int, createdAt time.Time) float64 {
	order := math.Log10(math.Max(math.Abs(float64(score)), 1))
	var sign float64
	switch {
	case score > 0:
		sign = 1
	case score < 0:
		sign = -1
	}
	age := createdAt.Sub(Epoch).Seconds()
	return sign*order + age/DecaySeconds
}

// SortKey is the total ordering key for a feed item: hot key (zero for the
// new ordering), then creation time, then id. The id component makes the
// ordering total, which stable pagination requires.
type SortKey struct {
	Hot       float64
	CreatedAt time.Time
	ID        uuid.UUID
}

// HotKey builds the sort key for the hot ordering.
func HotKey(score int, createdAt time.Time, id uuid.UUID) SortKey {
	return SortKey{Hot: HotScore(score, createdAt), CreatedAt: createdAt, ID: id}
}

// NewKey builds the sort key for the new ordering: identity on creation
// time.
func NewKey(createdAt time.Time, id uuid.UUID) SortKey {
	return SortKey{CreatedAt: createdAt, ID: id}
}

// Less reports whether k sorts before other in a feed, i.e. k appears
// earlier. Feeds are descending: higher hot key first, then newer first,
// then larger id first.
func (k SortKey) Less(other SortKey) bool {
	if k.Hot != other.Hot {
		return k.Hot > other.Hot
	}
	if !k.CreatedAt.Equal(other.CreatedAt) {
		return k.CreatedAt.After(other.CreatedAt)
	}
	return compareUUID(k.ID, other.ID) > 0
}

func compareUUID(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
