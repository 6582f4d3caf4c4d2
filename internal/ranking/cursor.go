package ranking

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursor is an opaque pagination token: the sort key of the last item on a
// page plus the ordering it belongs to, so a hot cursor cannot be replayed
// against the new feed.
type Cursor struct {
	Order Order
	Key   SortKey
}

// Encode serializes the cursor to an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%s|%s|%d|%s",
		c.Order,
		strconv.FormatFloat(c.Key.Hot, 'g', -1, 64),
		c.Key.CreatedAt.UnixNano(),
		c.Key.ID,
	)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. It rejects tokens minted
// for a different ordering.
func DecodeCursor(token string, order Order) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor: %w", err)
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 4 {
		return Cursor{}, fmt.Errorf("malformed cursor: expected 4 fields, got %d", len(parts))
	}
	if Order(parts[0]) != order {
		return Cursor{}, fmt.Errorf("cursor belongs to %q ordering, not %q", parts[0], order)
	}

	hot, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor key: %w", err)
	}
	nanos, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor id: %w", err)
	}

	return Cursor{
		Order: order,
		Key:   SortKey{Hot: hot, CreatedAt: time.Unix(0, nanos).UTC(), ID: id},
	}, nil
}
